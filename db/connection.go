package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	// necessary imports to wire up the postgres and sqlite drivers
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

func NewConnection(driver, databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// sqlite serializes writers anyway and every in-memory connection is its own database
	if driver == "sqlite3" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
