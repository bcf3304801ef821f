package dbpool

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLPool adapts *sql.DB (itself already internally pooled) to the Pool
// interface, adding the rebuild-on-transport-error retry contract on top.
type MySQLPool struct {
	cfg  Config
	dsn  string
	db   *sql.DB
}

// NewMySQLPool opens a pool against dsn using cfg's retry policy.
func NewMySQLPool(ctx context.Context, dsn string, cfg Config) (*MySQLPool, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbpool: mysql open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("dbpool: mysql ping: %w", err)
	}
	return &MySQLPool{cfg: cfg, dsn: dsn, db: db}, nil
}

func (p *MySQLPool) rebuild(ctx context.Context) func() error {
	return func() error {
		p.db.Close()
		db, err := sql.Open("mysql", p.dsn)
		if err != nil {
			return err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return err
		}
		p.db = db
		return nil
	}
}

func (p *MySQLPool) Execute(ctx context.Context, query string, args []any, commit bool) (int64, error) {
	var rows int64
	err := withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		res, err := p.db.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		rows, _ = res.RowsAffected()
		return nil
	})
	return rows, err
}

func (p *MySQLPool) ExecuteMany(ctx context.Context, stmts []Statement, commit bool) error {
	return withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		tx, err := p.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s.SQL, s.Args...); err != nil {
				tx.Rollback()
				return err
			}
		}
		if !commit {
			return tx.Rollback()
		}
		return tx.Commit()
	})
}

func (p *MySQLPool) Query(ctx context.Context, query string, args []any, scan func(Row) error) error {
	return withRetry(ctx, p.cfg, p.rebuild(ctx), func() error {
		rows, err := p.db.QueryContext(ctx, query, args...)
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

func (p *MySQLPool) Close() {
	p.db.Close()
}
