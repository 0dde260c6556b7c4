// Package store provides storage backends for the VibeRehab backend.
//
// This file implements an SQLite-backed generation log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/viberehab/backend/internal/models"
)

// Constants for SQLite store configuration
const (
	// DefaultDirPermissions defines the default permissions for database directories
	DefaultDirPermissions = 0755
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists generation records to an SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	// Ensure the directory exists
	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}

	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// AddGeneration inserts a generation record.
func (s *SQLiteStore) AddGeneration(rec models.GenerationRecord) error {
	scheduleJSON, err := marshalSchedule(rec.Schedule)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO generations (id, type, body, schedule_json, word_count, task_count, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Type), nilIfEmpty(rec.Text), scheduleJSON, rec.WordCount, rec.TaskCount, rec.CreatedAt,
	)
	if err != nil {
		slog.Error("SQLiteStore AddGeneration failed", "error", err, "id", rec.ID)
		return fmt.Errorf("failed to insert generation %s: %w", rec.ID, err)
	}
	slog.Debug("SQLiteStore AddGeneration succeeded", "id", rec.ID, "type", rec.Type)
	return nil
}

// GetGeneration returns the record with the given ID, or nil if absent.
func (s *SQLiteStore) GetGeneration(id string) (*models.GenerationRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, type, body, schedule_json, word_count, task_count, created_at FROM generations WHERE id = ?`, id)
	rec, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore GetGeneration failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to fetch generation %s: %w", id, err)
	}
	return &rec, nil
}

// ListGenerations returns the most recent records, newest first.
func (s *SQLiteStore) ListGenerations(limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultGenerationListLimit
	}
	rows, err := s.db.Query(
		`SELECT id, type, body, schedule_json, word_count, task_count, created_at FROM generations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		slog.Error("SQLiteStore ListGenerations query failed", "error", err)
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()
	return collectGenerations(rows)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
