// Package db is the narrow query/transaction service diagrams are persisted
// through.
//
// [Service] is all the canvas needs from a database: run a statement, read
// rows back, and group statements in a transaction that commits or rolls
// back as a unit. [SQLite] implements it on top of database/sql and
// github.com/mattn/go-sqlite3.
//
//	svc, err := db.OpenSQLite(path)
//	...
//	err = svc.Transaction(ctx, func(q db.Querier) error {
//	    if _, err := q.Exec(ctx, "INSERT INTO diagrams (name) VALUES (?)", name); err != nil {
//	        return err // rolled back
//	    }
//	    return nil // committed
//	})
//
// Failures are returned to the caller; nothing is retried.
package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/matzehuels/nodecanvas/pkg/errors"
)

// Row is one result row keyed by column name. TEXT and BLOB columns are
// returned as string and []byte, numbers as int64 or float64, NULL as nil.
type Row map[string]any

// String returns the named column as a string, or "" when it is NULL or
// not textual.
func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return ""
	}
}

// Int returns the named column as an int64, or 0 when it is not an integer.
func (r Row) Int(col string) int64 {
	v, _ := r[col].(int64)
	return v
}

// Querier runs statements.
type Querier interface {
	Query(ctx context.Context, stmt string, args ...any) ([]Row, error)
	Exec(ctx context.Context, stmt string, args ...any) (int64, error)
}

// Service is a Querier that also runs transactions.
//
// Transaction calls fn with a Querier bound to a new transaction. The
// transaction commits when fn returns nil and rolls back when fn returns an
// error or panics; the error (or panic) is passed on after the rollback.
// fn must only use the Querier it is given.
type Service interface {
	Querier
	Transaction(ctx context.Context, fn func(q Querier) error) error
	Close() error
}

// SQLite is a [Service] backed by a SQLite database file.
type SQLite struct {
	db   *sql.DB
	path string
}

// OpenSQLite opens or creates the database at path with WAL journaling and
// foreign keys enabled. ":memory:" opens a private in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open sqlite %s", path)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "set WAL mode")
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "enable foreign keys")
	}
	return &SQLite{db: db, path: path}, nil
}

// Path returns the database location.
func (s *SQLite) Path() string { return s.path }

// Query implements [Querier].
func (s *SQLite) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	return query(ctx, s.db, stmt, args)
}

// Exec implements [Querier]. It returns the number of affected rows.
func (s *SQLite) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	return exec(ctx, s.db, stmt, args)
}

// Transaction implements [Service].
func (s *SQLite) Transaction(ctx context.Context, fn func(q Querier) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(errors.ErrCodeTransaction, err, "begin")
	}
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()
	if err := fn(txQuerier{tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return stderrors.Join(err, errors.Wrap(errors.ErrCodeTransaction, rbErr, "rollback"))
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(errors.ErrCodeTransaction, err, "commit")
	}
	return nil
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

type txQuerier struct{ tx *sql.Tx }

func (q txQuerier) Query(ctx context.Context, stmt string, args ...any) ([]Row, error) {
	return query(ctx, q.tx, stmt, args)
}

func (q txQuerier) Exec(ctx context.Context, stmt string, args ...any) (int64, error) {
	return exec(ctx, q.tx, stmt, args)
}

type conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func query(ctx context.Context, c conn, stmt string, args []any) ([]Row, error) {
	rows, err := c.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "columns")
	}
	var out []Row
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan")
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = vals[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "iterate rows")
	}
	return out, nil
}

func exec(ctx context.Context, c conn, stmt string, args []any) (int64, error) {
	res, err := c.ExecContext(ctx, stmt, args...)
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeStorage, err, "exec")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
