package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/couchcryptid/swe-alert-service/internal/domain"
)

// sortableTime is fixed-width so checked_at orders lexically.
const sortableTime = "2006-01-02T15:04:05.000000000Z07:00"

const schema = `
CREATE TABLE IF NOT EXISTS check_results (
	id         TEXT PRIMARY KEY,
	checked_at TEXT NOT NULL,
	station    TEXT NOT NULL,
	alert      INTEGER NOT NULL,
	payload    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_check_results_checked_at ON check_results (checked_at);
`

// SQLiteStore appends every check result to a SQLite table, keeping a
// history alongside the latest state.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at path and runs migrations. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared across calls.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close() //nolint:errcheck,gosec // pragma error takes precedence
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close() //nolint:errcheck,gosec // migrate error takes precedence
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts the result. Saving the same ID twice replaces the row.
func (s *SQLiteStore) Save(ctx context.Context, res domain.CheckResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO check_results (id, checked_at, station, alert, payload)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			checked_at = excluded.checked_at,
			station    = excluded.station,
			alert      = excluded.alert,
			payload    = excluded.payload`,
		res.ID, res.CheckedAt.UTC().Format(sortableTime), res.Station, res.Decision.Alert, string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert check result: %w", err)
	}
	return nil
}

// Latest returns the most recently checked result.
func (s *SQLiteStore) Latest(ctx context.Context) (domain.CheckResult, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM check_results ORDER BY checked_at DESC, rowid DESC LIMIT 1`,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.CheckResult{}, ErrNoState
	}
	if err != nil {
		return domain.CheckResult{}, fmt.Errorf("query latest: %w", err)
	}
	return decodeResult(payload)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeResult(payload string) (domain.CheckResult, error) {
	var res domain.CheckResult
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		return domain.CheckResult{}, fmt.Errorf("decode check result: %w", err)
	}
	return res, nil
}
