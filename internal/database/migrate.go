// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var embedMigrations embed.FS

// prepare points goose at the migration set for driver.
func prepare(driver string) (string, error) {
	goose.SetBaseFS(embedMigrations)

	switch driver {
	case DriverPostgres:
		if err := goose.SetDialect("postgres"); err != nil {
			return "", err
		}
		return "migrations/postgres", nil
	case DriverSQLite, "":
		if err := goose.SetDialect("sqlite3"); err != nil {
			return "", err
		}
		return "migrations/sqlite", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// RunMigrations runs all pending goose migrations.
func RunMigrations(db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}

	return goose.Up(db, dir)
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}

	return goose.Down(db, dir)
}

// MigrateReset rolls back all migrations.
func MigrateReset(db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}

	return goose.Reset(db, dir)
}

// MigrateStatus logs the applied state of every migration.
func MigrateStatus(db *sql.DB, driver string) error {
	dir, err := prepare(driver)
	if err != nil {
		return err
	}

	return goose.Status(db, dir)
}
