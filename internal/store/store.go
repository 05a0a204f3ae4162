// Package store persists tank records in a relational database. Two
// backends are supported: SQLite for single-binary deployments and
// Postgres for a shared store.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"bodega/internal/tank"
)

// Driver selects the storage backend.
type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// ErrDuplicateID reports a create that collided with an existing tank id.
var ErrDuplicateID = errors.New("tank id already exists")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS tanks (
	id VARCHAR(50) PRIMARY KEY,
	beer_type VARCHAR(100) NOT NULL,
	volume_liters INTEGER NOT NULL DEFAULT 0,
	capacity_liters INTEGER NOT NULL,
	status VARCHAR(50) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`

// Store provides tank CRUD over a SQL database. It holds no row state of
// its own: the table is the single source of truth and every read goes
// back to it.
type Store struct {
	db     *sql.DB
	driver Driver
	log    *zap.Logger
}

// Open connects to the configured backend and verifies the connection.
// Schema creation is deferred to EnsureSchema so that it runs with the
// caller's request context.
func Open(driver Driver, dsn string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		db  *sql.DB
		err error
	)
	switch driver {
	case DriverSQLite:
		db, err = openSQLite(dsn)
	case DriverPostgres:
		db, err = openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}

	log.Info("store opened", zap.String("driver", string(driver)))
	return &Store{db: db, driver: driver, log: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to the $N form Postgres expects. SQLite
// queries pass through untouched.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EnsureSchema creates the tanks table if it does not exist and, only when
// the table holds no rows at all, inserts the eight demo tanks. Seeding is
// a one-time bootstrap: once any record exists it never re-applies, no
// matter how often this runs.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("create tanks table: %w", err)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tanks").Scan(&count); err != nil {
		return fmt.Errorf("count tanks: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	insert := s.rebind(`INSERT INTO tanks (id, beer_type, volume_liters, capacity_liters, status)
		VALUES (?, ?, ?, ?, ?)`)
	for _, t := range tank.Seed() {
		if _, err := tx.ExecContext(ctx, insert,
			t.ID, t.BeerType, t.VolumeLiters, t.CapacityLiters, string(t.Status)); err != nil {
			return fmt.Errorf("seed tank %s: %w", t.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}

	s.log.Info("seeded demo tanks", zap.Int("count", len(tank.Seed())))
	return nil
}

// List returns all tanks ordered by id ascending.
func (s *Store) List(ctx context.Context) ([]tank.Tank, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, beer_type, volume_liters, capacity_liters, status FROM tanks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}
	defer rows.Close()

	tanks := []tank.Tank{}
	for rows.Next() {
		var t tank.Tank
		var status string
		if err := rows.Scan(&t.ID, &t.BeerType, &t.VolumeLiters, &t.CapacityLiters, &status); err != nil {
			return nil, fmt.Errorf("scan tank: %w", err)
		}
		t.Status = tank.Status(status)
		tanks = append(tanks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tanks: %w", err)
	}
	return tanks, nil
}

// Create inserts a new tank row. A primary-key collision is reported as
// ErrDuplicateID.
func (s *Store) Create(ctx context.Context, t tank.Tank) error {
	query := s.rebind(`INSERT INTO tanks (id, beer_type, volume_liters, capacity_liters, status)
		VALUES (?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		t.ID, t.BeerType, t.VolumeLiters, t.CapacityLiters, string(t.Status)); err != nil {
		if s.isDuplicate(err) {
			return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
		}
		return fmt.Errorf("create tank %s: %w", t.ID, err)
	}
	return nil
}

// Update replaces all mutable fields of the row matching the tank id and
// refreshes the update timestamp. It returns the number of rows affected;
// zero means no record had that id, which is not an error here.
func (s *Store) Update(ctx context.Context, t tank.Tank) (int64, error) {
	query := s.rebind(`UPDATE tanks
		SET beer_type = ?, volume_liters = ?, capacity_liters = ?, status = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query,
		t.BeerType, t.VolumeLiters, t.CapacityLiters, string(t.Status), t.ID)
	if err != nil {
		return 0, fmt.Errorf("update tank %s: %w", t.ID, err)
	}
	return res.RowsAffected()
}

// Delete removes the row matching id and returns the rows affected. Like
// Update, a missing id yields zero rows and no error.
func (s *Store) Delete(ctx context.Context, id string) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tanks WHERE id = ?`), id)
	if err != nil {
		return 0, fmt.Errorf("delete tank %s: %w", id, err)
	}
	return res.RowsAffected()
}
