// Package store provides storage backends for the VibeRehab backend.
//
// This file implements a PostgreSQL-backed generation log.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/viberehab/backend/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists generation records to PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	// Apply options
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	// Determine DSN (required)
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	// Run migrations to ensure the generations table exists
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// AddGeneration inserts a generation record.
func (s *PostgresStore) AddGeneration(rec models.GenerationRecord) error {
	scheduleJSON, err := marshalSchedule(rec.Schedule)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO generations (id, type, body, schedule_json, word_count, task_count, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, string(rec.Type), nilIfEmpty(rec.Text), scheduleJSON, rec.WordCount, rec.TaskCount, rec.CreatedAt,
	)
	if err != nil {
		slog.Error("PostgresStore AddGeneration failed", "error", err, "id", rec.ID)
		return fmt.Errorf("failed to insert generation %s: %w", rec.ID, err)
	}
	slog.Debug("PostgresStore AddGeneration succeeded", "id", rec.ID, "type", rec.Type)
	return nil
}

// GetGeneration returns the record with the given ID, or nil if absent.
func (s *PostgresStore) GetGeneration(id string) (*models.GenerationRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, type, body, schedule_json, word_count, task_count, created_at FROM generations WHERE id = $1`, id)
	rec, err := scanGeneration(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("PostgresStore GetGeneration failed", "error", err, "id", id)
		return nil, fmt.Errorf("failed to fetch generation %s: %w", id, err)
	}
	return &rec, nil
}

// ListGenerations returns the most recent records, newest first.
func (s *PostgresStore) ListGenerations(limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultGenerationListLimit
	}
	rows, err := s.db.Query(
		`SELECT id, type, body, schedule_json, word_count, task_count, created_at FROM generations ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		slog.Error("PostgresStore ListGenerations query failed", "error", err)
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()
	return collectGenerations(rows)
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
