// Package database provides the SQLite session store that holds one
// materialized load of the source data.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// sessionSchema is the single source of truth for the session store layout.
// Both tables are fully replaced on every load; there are no migrations.
const sessionSchema = `
CREATE TABLE IF NOT EXISTS predictions (
	biz_reg_no          TEXT NOT NULL DEFAULT '',
	company_name        TEXT NOT NULL,
	p_risk              REAL NOT NULL,
	p_normal            REAL NOT NULL,
	expected_shortfall  REAL,
	actual_shortfall    REAL,
	explanation         TEXT NOT NULL DEFAULT '',
	final_judgement     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_reg_no ON predictions(biz_reg_no);
CREATE INDEX IF NOT EXISTS idx_predictions_name ON predictions(company_name);

CREATE TABLE IF NOT EXISTS yearly_indicators (
	biz_reg_no                    TEXT NOT NULL DEFAULT '',
	company_name                  TEXT NOT NULL,
	year                          INTEGER NOT NULL,
	reserve_amount                REAL NOT NULL,
	min_required_reserve          REAL NOT NULL,
	total_evaluated_reserve       REAL NOT NULL,
	continuing_liability_reserve  REAL NOT NULL,
	contribution_paid             REAL NOT NULL,
	contribution_assessed         REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_indicators_reg_no ON yearly_indicators(biz_reg_no, year);
CREATE INDEX IF NOT EXISTS idx_indicators_name ON yearly_indicators(company_name, year);
`

// DB wraps the session store connection.
type DB struct {
	conn *sql.DB
	path string
	name string
}

// Config holds database configuration
type Config struct {
	Path string
	Name string // Friendly name for logging (e.g., "session")
}

// New opens the session store, applies PRAGMAs tuned for a rebuilt-on-load
// cache, and creates the schema.
func New(cfg Config) (*DB, error) {
	// file: URIs (in-memory databases in tests) skip filepath handling
	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	conn, err := sql.Open("sqlite", buildConnectionString(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	db := &DB{conn: conn, path: cfg.Path, name: cfg.Name}

	if err := db.migrate(); err != nil {
		return nil, fmt.Errorf("failed to create schema for %s: %w", cfg.Name, err)
	}

	return db, nil
}

// buildConnectionString creates the SQLite connection string. The session
// store is ephemeral (fully rebuilt on every load), so it runs with the
// cache profile: no fsync, temp tables in RAM.
func buildConnectionString(path string) string {
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(OFF)"
	connStr += "&_pragma=temp_store(MEMORY)"
	connStr += "&_pragma=cache_size(-64000)" // 64MB cache (negative = KB)
	return connStr
}

// configureConnectionPool sets up the connection pool. Reads dominate; the
// single writer is the importer during a refresh.
func configureConnectionPool(conn *sql.DB) {
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)
}

// migrate applies the session schema within a transaction.
func (db *DB) migrate() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}

	if _, err := tx.Exec(sessionSchema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return tx.Commit()
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
// Used by repositories to execute queries
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Begin starts a new transaction
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}
