package db

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE SCHEMA IF NOT EXISTS {schema}`,
	`CREATE TABLE IF NOT EXISTS {schema}.users (
		id               TEXT PRIMARY KEY,
		auth_provider    TEXT NOT NULL,
		auth_provider_id TEXT NOT NULL,
		username         TEXT NOT NULL,
		email            TEXT NOT NULL DEFAULT '',
		created_at       TIMESTAMPTZ NOT NULL,
		updated_at       TIMESTAMPTZ NOT NULL,
		UNIQUE (auth_provider, auth_provider_id)
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.rides (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES {schema}.users (id) ON DELETE CASCADE,
		distance   NUMERIC(5, 2) NOT NULL CHECK (distance >= 0),
		start_time TIMESTAMPTZ NOT NULL,
		end_time   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS rides_start_time_idx ON {schema}.rides (start_time DESC, id)`,
}

// sqlite keeps distance as TEXT so values round-trip without float conversion
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS {schema}.users (
		id               TEXT PRIMARY KEY,
		auth_provider    TEXT NOT NULL,
		auth_provider_id TEXT NOT NULL,
		username         TEXT NOT NULL,
		email            TEXT NOT NULL DEFAULT '',
		created_at       DATETIME NOT NULL,
		updated_at       DATETIME NOT NULL,
		UNIQUE (auth_provider, auth_provider_id)
	)`,
	`CREATE TABLE IF NOT EXISTS {schema}.rides (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		distance   TEXT NOT NULL,
		start_time DATETIME NOT NULL,
		end_time   DATETIME NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS {schema}.rides_start_time_idx ON rides (start_time DESC, id)`,
}

// Migrate creates the users and rides tables when they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB, schema string) error {
	log.Printf("📋 Starting to migrate schema %s (%s)", schema, db.DriverName())

	var statements []string
	switch db.DriverName() {
	case "postgres":
		statements = postgresSchema
	case "sqlite3":
		statements = sqliteSchema
	default:
		return fmt.Errorf("unsupported database driver: %s", db.DriverName())
	}

	for _, statement := range statements {
		query := withSchema(statement, schema)
		if _, err := db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to apply migration %q: %w", firstLine(query), err)
		}
	}

	log.Printf("📋 Completed successfully - applied %d migration statements", len(statements))
	return nil
}
