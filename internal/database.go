package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const createClientKVSQL = `
CREATE TABLE IF NOT EXISTS clientKV (
	key TEXT PRIMARY KEY,
	value TEXT
)`

// OpenDatabase opens (creating if needed) the client SQLite database
func OpenDatabase(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	if _, err := db.Exec(createClientKVSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create clientKV table: %w", err)
	}

	return db, nil
}

// GetClientKV returns the value stored under key, if any
func GetClientKV(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow("SELECT value FROM clientKV WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query failed: %w", err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// PutClientKV upserts a value
func PutClientKV(db *sql.DB, key, value string) error {
	_, err := db.Exec(
		"INSERT INTO clientKV (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	if err != nil {
		return fmt.Errorf("upsert failed: %w", err)
	}
	return nil
}

// DeleteClientKV removes a key
func DeleteClientKV(db *sql.DB, key string) error {
	if _, err := db.Exec("DELETE FROM clientKV WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}

// SQLiteIdentityStore keeps the identity record in the clientKV table
type SQLiteIdentityStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteIdentityStore wraps an already opened database
func NewSQLiteIdentityStore(db *sql.DB) *SQLiteIdentityStore {
	return &SQLiteIdentityStore{db: db, path: "clientKV"}
}

// OpenSQLiteIdentityStore opens the database at path and wraps it
func OpenSQLiteIdentityStore(path string) (*SQLiteIdentityStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &PersistenceError{Path: path, Op: "open", Err: err}
	}
	return &SQLiteIdentityStore{db: db, path: path}, nil
}

// Load reads the identity, treating any failure as "no saved identity"
func (s *SQLiteIdentityStore) Load() (*Identity, bool) {
	value, ok, err := GetClientKV(s.db, IdentityKey)
	if err != nil {
		LogWarn("%v", &PersistenceError{Path: s.path, Op: "read", Err: err})
		return nil, false
	}
	if !ok {
		return nil, false
	}

	identity, err := DecodeIdentity([]byte(value))
	if err != nil {
		LogWarn("Ignoring stored identity: %v", &PersistenceError{Path: s.path, Op: "parse", Err: err})
		return nil, false
	}
	return identity, true
}

// Save upserts the identity record
func (s *SQLiteIdentityStore) Save(identity *Identity) error {
	data, err := EncodeIdentity(identity)
	if err != nil {
		return err
	}
	if err := PutClientKV(s.db, IdentityKey, string(data)); err != nil {
		return &PersistenceError{Path: s.path, Op: "write", Err: err}
	}
	return nil
}

// Clear removes the identity record
func (s *SQLiteIdentityStore) Clear() error {
	if err := DeleteClientKV(s.db, IdentityKey); err != nil {
		return &PersistenceError{Path: s.path, Op: "delete", Err: err}
	}
	return nil
}

// Close releases the database handle
func (s *SQLiteIdentityStore) Close() error {
	return s.db.Close()
}
