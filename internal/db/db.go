// Package db opens the Postgres connection and applies schema migrations.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Open connects to Postgres and verifies connectivity, retrying briefly so the
// server survives a database that is still starting up.
func Open(databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	for i := 0; i < 10; i++ {
		if err = conn.Ping(); err == nil {
			return conn, nil
		}
		time.Sleep(2 * time.Second)
	}
	conn.Close()
	return nil, fmt.Errorf("database unreachable after retries: %w", err)
}
