package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"

	"github.com/riskibarqy/hockey-projections/internal/platform/daykey"
)

const defaultReadWorkers = 4

// snapshotStore keeps one CSV per day under dir plus an optional combined file.
type snapshotStore[T any] struct {
	dir          string
	combinedFile string
	readWorkers  int
	less         func(a, b T) bool
}

func (s *snapshotStore[T]) dayPath(day time.Time) string {
	return filepath.Join(s.dir, daykey.Format(day)+".csv")
}

func (s *snapshotStore[T]) WriteDay(ctx context.Context, day time.Time, rows []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sorted := s.sorted(rows)
	return writeCSV(s.dayPath(day), sorted)
}

func (s *snapshotStore[T]) ReadDay(ctx context.Context, day time.Time) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return readCSV[T](s.dayPath(day))
}

// ListDays returns the days with a snapshot file, oldest first.
func (s *snapshotStore[T]) ListDays(ctx context.Context) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, crerr.Wrapf(err, "list %s", s.dir)
	}

	days := make([]time.Time, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".csv") || strings.HasPrefix(name, ".") {
			continue
		}
		day, err := daykey.Parse(strings.TrimSuffix(name, ".csv"))
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, nil
}

// ReadAllDays concatenates every daily snapshot. Files are read on a worker
// pool and the result is sorted so the output does not depend on scheduling.
func (s *snapshotStore[T]) ReadAllDays(ctx context.Context) ([]T, error) {
	days, err := s.ListDays(ctx)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return nil, nil
	}

	workers := s.readWorkers
	if workers <= 0 {
		workers = defaultReadWorkers
	}
	if workers > len(days) {
		workers = len(days)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu       sync.Mutex
		firstErr error
		out      []T
		wg       sync.WaitGroup
	)
	for _, day := range days {
		day := day
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			rows, err := s.ReadDay(ctx, day)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			out = append(out, rows...)
		}); err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit read to worker pool: %w", err)
		}
	}
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return s.sorted(out), nil
}

func (s *snapshotStore[T]) WriteCombined(ctx context.Context, rows []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.combinedFile == "" {
		return crerr.New("combined file path is not configured")
	}
	return writeCSV(s.combinedFile, s.sorted(rows))
}

func (s *snapshotStore[T]) ReadCombined(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.combinedFile == "" {
		return nil, crerr.New("combined file path is not configured")
	}
	return readCSV[T](s.combinedFile)
}

func (s *snapshotStore[T]) sorted(rows []T) []T {
	out := append([]T(nil), rows...)
	if s.less != nil {
		sort.SliceStable(out, func(i, j int) bool { return s.less(out[i], out[j]) })
	}
	return out
}
