package state

import (
	"context"
	"fmt"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// Store is the persistence contract shared by the file and SQLite backends.
type Store interface {
	Save(ctx context.Context, res domain.CheckResult) error
	Latest(ctx context.Context) (domain.CheckResult, error)
	Close() error
}

// Open returns the store for backend ("file" or "sqlite") rooted at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "file":
		s, err := NewFileStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
