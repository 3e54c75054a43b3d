package repository

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// pgUniqueViolation is the SQLSTATE of a unique constraint failure.
const pgUniqueViolation = "23505"

// isUniqueViolation reports a unique or primary key conflict from either driver.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT &&
			(strings.Contains(sqliteErr.Error(), "UNIQUE") || strings.Contains(sqliteErr.Error(), "PRIMARY KEY"))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return false
}

// violatesColumn reports whether a unique violation names table.column.
// SQLite says "users.username", Postgres names the constraint "users_username_key".
func violatesColumn(err error, table, column string) bool {
	msg := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		msg = pgErr.ConstraintName
	}
	return strings.Contains(msg, table+"."+column) || strings.Contains(msg, table+"_"+column)
}

// expectRow turns an update or delete that matched nothing into notFound.
func expectRow(result sql.Result, err error, notFound error) error {
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
