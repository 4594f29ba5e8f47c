package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/elysium-descent/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage/sqlite/migrations"
)

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// fromMillis reverses toMillis for persisted millisecond timestamps.
func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// toNullMillis maps optional domain times to sql.NullInt64 for nullable DB columns.
func toNullMillis(value *time.Time) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*value), Valid: true}
}

// fromNullMillis maps nullable SQL timestamps back into optional domain time values.
func fromNullMillis(value sql.NullInt64) *time.Time {
	if !value.Valid {
		return nil
	}
	t := fromMillis(value.Int64)
	return &t
}

func boolToInt(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

// Store provides a SQLite-backed store implementing all storage interfaces.
type Store struct {
	sqlDB *sql.DB
}

var _ storage.Store = (*Store)(nil)

// Open opens the ledger store at the provided path and applies embedded
// migrations before the store is handed to higher layers.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.LedgerFS, "ledger"); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
//
// Close is intentionally nil-safe so callers can defer it in all startup paths.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// AllocateNext returns the next value of a named monotonic counter and
// advances it. Read and increment happen inside one transaction so two
// concurrent allocations can never observe the same value.
func (s *Store) AllocateNext(ctx context.Context, kind storage.CounterKind) (uint64, error) {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin counter tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"INSERT OR IGNORE INTO counters (kind, next_value) VALUES (?, 1)",
		string(kind),
	); err != nil {
		return 0, fmt.Errorf("init counter: %w", err)
	}

	var next int64
	if err := tx.QueryRowContext(ctx,
		"SELECT next_value FROM counters WHERE kind = ?",
		string(kind),
	).Scan(&next); err != nil {
		return 0, fmt.Errorf("read counter: %w", err)
	}
	if next <= 0 {
		return 0, fmt.Errorf("counter %q is corrupt", kind)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE counters SET next_value = next_value + 1 WHERE kind = ?",
		string(kind),
	); err != nil {
		return 0, fmt.Errorf("advance counter: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit counter tx: %w", err)
	}
	return uint64(next), nil
}
