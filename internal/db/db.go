// Package db is the SQLite task backend. It satisfies store.Store by
// rewriting the full task set inside one transaction per save.
package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schema string

const lastIDKey = "last_task_id"

// DB wraps the database connection
type DB struct {
	*sql.DB
	path string
}

// New opens (creating if needed) the database at path and initializes the schema
func New(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	// Initialize schema
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema %s: %w", path, err)
	}

	return &DB{DB: db, path: path}, nil
}

// Path returns the database file
func (db *DB) Path() string {
	return db.path
}

// GetSetting retrieves a setting value by key
func (db *DB) GetSetting(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting sets a setting value
func (db *DB) SetSetting(key, value string) error {
	_, err := db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// LastID returns the highest task id ever issued, kept in the settings table
func (db *DB) LastID(_ context.Context) (int, error) {
	v, err := db.GetSetting(lastIDKey)
	if err != nil || v == "" {
		return 0, err
	}
	return strconv.Atoi(v)
}

// SetLastID records id as the highest task id issued
func (db *DB) SetLastID(_ context.Context, id int) error {
	return db.SetSetting(lastIDKey, strconv.Itoa(id))
}
