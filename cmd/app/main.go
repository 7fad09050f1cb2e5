// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"

	"codeberg.org/mainda/accounts/internal/config"
	"codeberg.org/mainda/accounts/internal/database"
	"codeberg.org/mainda/accounts/internal/server"
	"github.com/urfave/cli/v3"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "accounts",
		Usage:   "Mainda parent and child accounts API",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			migrateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage database migrations",
		Commands: []*cli.Command{
			{Name: "up", Usage: "Apply all pending migrations", Action: withDB(database.RunMigrations)},
			{Name: "down", Usage: "Roll back the latest migration", Action: withDB(database.MigrateDown)},
			{Name: "reset", Usage: "Roll back all migrations", Action: withDB(database.MigrateReset)},
			{Name: "status", Usage: "Print migration status", Action: withDB(database.MigrateStatus)},
		},
	}
}

func withDB(fn func(db *sql.DB, driver string) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)

		db, err := database.Connect(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		return fn(db.DB, cfg.Database.Driver)
	}
}
