package dbpool

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresPool adapts *pgxpool.Pool to the Pool interface, rebuilding the
// underlying pool from its original connection string on a transport error.
type PostgresPool struct {
	cfg    Config
	connStr string
	pool   *pgxpool.Pool
}

// NewPostgresPool opens a pool against connStr using cfg's retry policy.
func NewPostgresPool(ctx context.Context, connStr string, cfg Config) (*PostgresPool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("dbpool: postgres connect: %w", err)
	}
	return &PostgresPool{cfg: cfg, connStr: connStr, pool: pool}, nil
}

func (p *PostgresPool) rebuild(ctx context.Context) func() error {
	return func() error {
		p.pool.Close()
		pool, err := pgxpool.New(ctx, p.connStr)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

func (p *PostgresPool) Execute(ctx context.Context, sql string, args []any, commit bool) (int64, error) {
	var rows int64
	err := withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		tag, err := p.pool.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		rows = tag.RowsAffected()
		return nil
	})
	return rows, err
}

func (p *PostgresPool) ExecuteMany(ctx context.Context, stmts []Statement, commit bool) error {
	return withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		tx, err := p.pool.Begin(ctx)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			if _, err := tx.Exec(ctx, s.SQL, s.Args...); err != nil {
				tx.Rollback(ctx)
				return err
			}
		}
		if !commit {
			return tx.Rollback(ctx)
		}
		return tx.Commit(ctx)
	})
}

func (p *PostgresPool) Query(ctx context.Context, sql string, args []any, scan func(Row) error) error {
	return withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		rows, err := p.pool.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			if err := scan(rows); err != nil {
				return err
			}
		}
		return rows.Err()
	})
}

func (p *PostgresPool) Close() {
	p.pool.Close()
}
