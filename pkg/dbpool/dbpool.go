// Package dbpool wraps the two driver-specific connection pools
// (pgxpool.Pool for Postgres, database/sql.DB for MySQL) with the
// rebuild-on-transport-error + bounded-retry + backoff contract of
// SPEC_FULL.md §4.6, modeled on the teacher's emergency.Controller
// retry/backoff shape.
package dbpool

import (
	"context"
	"time"
)

// Config controls the retry/backoff policy shared by every dialect.
type Config struct {
	// MaxReconnectAttempts bounds how many times Execute/ExecuteMany will
	// rebuild the underlying pool and retry before giving up.
	MaxReconnectAttempts int

	// Backoff is the pause between a failed attempt and the rebuild retry.
	Backoff time.Duration
}

// DefaultConfig returns the SPEC_FULL.md §4.6 defaults.
func DefaultConfig() Config {
	return Config{MaxReconnectAttempts: 3, Backoff: 5 * time.Second}
}

// Pool is the dialect-agnostic surface the repository layer drives.
// Execute runs a single statement; ExecuteMany runs a batch of statements,
// each a (sql, args) pair, within one transaction that is committed when
// commit is true and rolled back otherwise.
type Pool interface {
	Execute(ctx context.Context, sql string, args []any, commit bool) (rowsAffected int64, err error)
	ExecuteMany(ctx context.Context, stmts []Statement, commit bool) error
	Query(ctx context.Context, sql string, args []any, scan func(Row) error) error
	Close()
}

// Statement is one (sql, args) pair for a batched write.
type Statement struct {
	SQL  string
	Args []any
}

// Row is the minimal column-scan surface Query hands to its callback,
// satisfied by both *pgx.Rows and *sql.Rows.
type Row interface {
	Scan(dest ...any) error
}

// withRetry runs attempt up to cfg.MaxReconnectAttempts+1 times, rebuilding
// the pool via rebuild before each retry and sleeping cfg.Backoff between
// attempts. A successful attempt resets nothing across calls — each call to
// withRetry starts its own counter, matching §4.6's per-operation retry
// budget. Returns the last error if every attempt is exhausted.
func withRetry(ctx context.Context, cfg Config, rebuild func() error, attempt func() error) error {
	var lastErr error
	for i := 0; i <= cfg.MaxReconnectAttempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(cfg.Backoff):
			}
			if err := rebuild(); err != nil {
				lastErr = err
				continue
			}
		}
		if err := attempt(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
