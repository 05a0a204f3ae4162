package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

// pgUniqueViolation is the Postgres error code for a primary-key or unique
// constraint violation.
const pgUniqueViolation = "23505"

func openPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres driver requires a connection URL")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

func isPostgresDuplicate(err error) bool {
	var perr *pgconn.PgError
	return errors.As(err, &perr) && perr.Code == pgUniqueViolation
}

func (s *Store) isDuplicate(err error) bool {
	switch s.driver {
	case DriverSQLite:
		return isSQLiteDuplicate(err)
	case DriverPostgres:
		return isPostgresDuplicate(err)
	}
	return false
}
