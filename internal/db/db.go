package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	conn *sql.DB
}

// Open creates a new database connection and runs migrations
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{conn: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate runs database migrations
func (db *DB) migrate() error {
	migrations := []string{
		`PRAGMA busy_timeout = 5000`,
		`CREATE TABLE IF NOT EXISTS repos (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			owner TEXT NOT NULL,
			name TEXT NOT NULL,
			track_prereleases INTEGER NOT NULL DEFAULT 0,
			UNIQUE(owner, name)
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY,
			title TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS announced_releases (
			repo_owner TEXT NOT NULL,
			repo_name  TEXT NOT NULL,
			release_id INTEGER NOT NULL,
			tag_name   TEXT,
			published_at TEXT,
			created_at   TEXT DEFAULT (datetime('now')),
			PRIMARY KEY (repo_owner, repo_name, release_id)
		)`,
		`CREATE TABLE IF NOT EXISTS etags (
			repo_owner TEXT NOT NULL,
			repo_name  TEXT NOT NULL,
			etag       TEXT NOT NULL,
			updated_at TEXT DEFAULT (datetime('now')),
			PRIMARY KEY (repo_owner, repo_name)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			repo_owner TEXT NOT NULL,
			repo_name  TEXT NOT NULL,
			end_tag    TEXT NOT NULL,
			start_tag  TEXT,
			window_start TEXT,
			window_end   TEXT NOT NULL,
			features      INTEGER NOT NULL DEFAULT 0,
			bug_fixes     INTEGER NOT NULL DEFAULT 0,
			documentation INTEGER NOT NULL DEFAULT 0,
			other         INTEGER NOT NULL DEFAULT 0,
			markdown_path TEXT,
			pdf_path      TEXT,
			email_path    TEXT,
			created_at    TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS runs_created_at ON runs (created_at)`,
	}

	for _, migration := range migrations {
		if _, err := db.conn.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
