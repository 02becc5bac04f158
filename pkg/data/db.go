// Package data persists scorecard samples, fitted models, and score runs.
//
// Two drivers are supported: an embedded sqlite file (the default) and
// postgres for shared deployments. All queries are written with `?`
// placeholders and rebound per driver.
package data

import (
	_ "embed"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const (
	// DataFileName is the default sqlite file name.
	DataFileName = "data.db"

	// DriverSQLite selects the embedded sqlite store.
	DriverSQLite = "sqlite"

	// DriverPostgres selects a postgres store via DSN.
	DriverPostgres = "postgres"
)

var (
	//go:embed sql/ddl.sql
	ddl string

	errDBNotInitialized = errors.New("database not initialized")
)

// Init opens the store and bootstraps the schema. For sqlite the dsn is
// the database file path; for postgres a connection string. Idempotent.
func Init(driver, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.New("dsn not specified")
	}
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, errors.Errorf("unsupported driver: %s", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s database", driver)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to reach %s database", driver)
	}

	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// ensureSchema applies the DDL. Every statement is IF NOT EXISTS or
// conflict-tolerant, so reapplying is safe.
func ensureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(ddl); err != nil {
		return errors.Wrap(err, "failed to create database schema")
	}
	return nil
}

// SchemaVersion returns the highest applied schema version.
func SchemaVersion(db *sqlx.DB) (int, error) {
	if db == nil {
		return 0, errDBNotInitialized
	}

	var version int
	err := db.Get(&version, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
	if err != nil {
		return 0, errors.Wrap(err, "failed to read schema version")
	}
	return version, nil
}
