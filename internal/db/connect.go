package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:quizdesk.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/quizdesk?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}

// One schema serves both drivers: TEXT/INTEGER types and $N placeholders are
// valid on sqlite and postgres alike.
const schema = `
CREATE TABLE IF NOT EXISTS records (
  collection TEXT NOT NULL,
  key TEXT NOT NULL,
  doc TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  PRIMARY KEY (collection, key)
);

CREATE TABLE IF NOT EXISTS record_index (
  collection TEXT NOT NULL,
  idx_name TEXT NOT NULL,
  idx_value TEXT NOT NULL,
  key TEXT NOT NULL,
  PRIMARY KEY (collection, idx_name, key)
);

CREATE INDEX IF NOT EXISTS record_index_lookup
  ON record_index (collection, idx_name, idx_value);

CREATE TABLE IF NOT EXISTS sequences (
  collection TEXT PRIMARY KEY,
  next_key BIGINT NOT NULL
);
`
