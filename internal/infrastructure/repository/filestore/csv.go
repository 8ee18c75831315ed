package filestore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	crerr "github.com/cockroachdb/errors"
	"github.com/gocarina/gocsv"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
)

// readCSV decodes path into rows. A missing file is reported as
// gamestat.ErrSourceMissing.
func readCSV[T any](path string) ([]T, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, crerr.Wrapf(gamestat.ErrSourceMissing, "open %s", path)
		}
		return nil, crerr.Wrapf(err, "open %s", path)
	}
	defer file.Close()

	var rows []T
	if err := gocsv.Unmarshal(file, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, crerr.Wrapf(err, "decode %s", path)
	}
	return rows, nil
}

// writeCSV replaces path with rows. The file is rendered in memory and moved
// into place so readers never observe a partial snapshot.
func writeCSV[T any](path string, rows []T) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if rows == nil {
		rows = []T{}
	}
	if err := gocsv.Marshal(&rows, buf); err != nil {
		return crerr.Wrapf(err, "encode %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return crerr.Wrapf(err, "create dir %s", dir)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return crerr.Wrapf(err, "create temp file in %s", dir)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.B); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return crerr.Wrapf(err, "write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return crerr.Wrapf(err, "close %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return crerr.Wrapf(err, "replace %s", path)
	}
	return nil
}
