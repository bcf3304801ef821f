package repository

import (
	"fmt"

	"github.com/jihwankim/sqes/pkg/dbpool"
)

// New dispatches to the dialect-specific constructor. It exists so callers
// configuring use_database from an INI file don't need a type switch of
// their own.
func New(dialect Dialect, pool dbpool.Pool) (Repository, error) {
	switch dialect {
	case DialectPostgres:
		return NewPostgres(pool), nil
	case DialectMySQL:
		return NewMySQL(pool), nil
	default:
		return nil, fmt.Errorf("repository: unknown dialect %q", dialect)
	}
}
