package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures the catalogue schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:selfcheck.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/selfcheck?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return db, nil
}

// SchemaVersion is the catalogue layout this build reads and writes.
const SchemaVersion = 1

// ErrSchemaTooNew means the database was written by a newer build.
var ErrSchemaTooNew = errors.New("catalogue schema is newer than this build")

// ensureSchema creates the catalogue tables and stamps the schema version.
// A database stamped with a later version is refused rather than read.
func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	stmts := schemaSQLite
	if driver == DriverPostgres {
		stmts = schemaPostgres
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	var have sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM catalogue_schema`).Scan(&have); err != nil {
		return err
	}
	switch {
	case !have.Valid:
		_, err := db.ExecContext(ctx, `INSERT INTO catalogue_schema (version) VALUES ($1)`, SchemaVersion)
		return err
	case have.Int64 > SchemaVersion:
		return fmt.Errorf("%w: have %d, want %d", ErrSchemaTooNew, have.Int64, SchemaVersion)
	}
	return nil
}

var schemaSQLite = []string{
	`CREATE TABLE IF NOT EXISTS catalogue_schema (
  version INTEGER PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS question_sets (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  set_json TEXT NOT NULL,
  question_count INTEGER NOT NULL DEFAULT 0,
  updated_at INTEGER NOT NULL
)`,
}

var schemaPostgres = []string{
	`CREATE TABLE IF NOT EXISTS catalogue_schema (
  version INTEGER PRIMARY KEY
)`,
	`CREATE TABLE IF NOT EXISTS question_sets (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL DEFAULT '',
  set_json TEXT NOT NULL,
  question_count INTEGER NOT NULL DEFAULT 0,
  updated_at BIGINT NOT NULL
)`,
}
