package usecase

import (
	"errors"

	"github.com/riskibarqy/hockey-projections/internal/domain/gamestat"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrJobInProgress         = errors.New("job already in progress")
)

func isSourceMissing(err error) bool {
	return errors.Is(err, gamestat.ErrSourceMissing)
}
