package repository

import (
	"errors"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	domainRepo "github.com/sangkips/storefront-api/internal/domain/repository"
)

// pgUndefinedColumn is the SQLSTATE postgres raises for an unknown column
const pgUndefinedColumn = "42703"

var (
	pgColumnPattern     = regexp.MustCompile(`column "([^"]+)"`)
	sqliteColumnPattern = regexp.MustCompile(`has no column named (\w+)`)
)

// classifyWriteError turns driver errors about missing columns into a
// SchemaMismatchError. Other errors pass through untouched.
func classifyWriteError(table string, err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedColumn {
		column := pgErr.ColumnName
		if column == "" {
			if m := pgColumnPattern.FindStringSubmatch(pgErr.Message); m != nil {
				column = m[1]
			}
		}
		return &domainRepo.SchemaMismatchError{Table: table, Column: column, Err: err}
	}

	if m := sqliteColumnPattern.FindStringSubmatch(err.Error()); m != nil {
		return &domainRepo.SchemaMismatchError{Table: table, Column: m[1], Err: err}
	}

	return err
}
