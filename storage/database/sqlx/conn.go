// Package sqlxrepos implements the domain repositories on top of jmoiron/sqlx and
// Masterminds/squirrel, for both the sqlite and postgres engines.
package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/escondite/core"
)

// base is embedded by every repository.
type base struct {
	db core.DBConnector
	sb sq.StatementBuilderType
}

func newBase(db core.DBConnector) base {
	var format sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "postgres" {
		format = sq.Dollar
	}
	return base{db: db, sb: sq.StatementBuilder.PlaceholderFormat(format)}
}

// withConn acquires one connection for the duration of fn and releases it before returning.
func (b base) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := b.db.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquiring connection")
	}
	defer conn.Close()
	return fn(conn)
}

// withTx runs fn in a transaction on a single connection.
func (b base) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return b.withConn(ctx, func(conn *sqlx.Conn) error {
		tx, err := conn.BeginTxx(ctx, nil)
		if err != nil {
			return errors.Wrap(err, "beginning transaction")
		}
		if err = fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return errors.Wrap(tx.Commit(), "committing transaction")
	})
}

func (b base) get(ctx context.Context, dest interface{}, qb sq.Sqlizer) error {
	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return b.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, dest, q, args...)
	})
}

func (b base) selectAll(ctx context.Context, dest interface{}, qb sq.Sqlizer) error {
	q, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return b.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.SelectContext(ctx, dest, q, args...)
	})
}

// exec runs qb and returns the number of affected rows.
func (b base) exec(ctx context.Context, qb sq.Sqlizer) (int64, error) {
	q, args, err := qb.ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var n int64
	err = b.withConn(ctx, func(conn *sqlx.Conn) error {
		res, err := conn.ExecContext(ctx, q, args...)
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// insert runs an INSERT ... RETURNING id built from ib.
func (b base) insert(ctx context.Context, ib sq.InsertBuilder) (int, error) {
	q, args, err := ib.Suffix("RETURNING id").ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	var id int
	err = b.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, q, args...).Scan(&id)
	})
	return id, err
}

func (b base) count(ctx context.Context, qb sq.SelectBuilder) (int, error) {
	var n int
	err := b.get(ctx, &n, qb)
	return n, err
}

// trapNoRowsErr maps sql.ErrNoRows to notFoundErr.
func trapNoRowsErr(err, notFoundErr error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFoundErr
	}
	return err
}

// ilike matches col case-insensitively against a substring.
func ilike(col, substr string) sq.Sqlizer {
	return sq.Expr("LOWER("+col+") LIKE ?", "%"+strings.ToLower(substr)+"%")
}

func notIn(col string, ids []int) sq.Sqlizer {
	if len(ids) == 0 {
		return sq.Expr("1 = 1")
	}
	return sq.NotEq{col: ids}
}
