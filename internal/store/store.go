// Package store provides storage backends for the VibeRehab backend.
//
// It includes the in-memory task store that backs the patient dashboard and a
// generation log store with in-memory, SQLite, and PostgreSQL backends.
package store

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/viberehab/backend/internal/models"
)

// DefaultGenerationListLimit bounds how many generation records a listing
// returns when the caller does not specify a limit.
const DefaultGenerationListLimit = 10

// Opts holds configuration for store backends.
type Opts struct {
	// DSN is the database connection string (file path for SQLite,
	// connection URL for PostgreSQL).
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithSQLiteDSN configures an SQLite database file path.
func WithSQLiteDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithPostgresDSN configures a PostgreSQL connection string.
func WithPostgresDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// DetectDSNType determines whether a DSN refers to PostgreSQL or SQLite.
// PostgreSQL DSNs use URL or key=value forms; everything else is treated as
// an SQLite file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return "postgres"
	}
	return "sqlite"
}

// NewGenerationID returns a short unique identifier for a generation record.
func NewGenerationID() string {
	return uuid.NewString()[:8]
}

// GenerationStore persists AI generation records.
type GenerationStore interface {
	AddGeneration(rec models.GenerationRecord) error
	// GetGeneration returns the record with the given ID, or nil if absent.
	GetGeneration(id string) (*models.GenerationRecord, error)
	// ListGenerations returns the most recent records, newest first,
	// capped at limit (DefaultGenerationListLimit if limit <= 0).
	ListGenerations(limit int) ([]models.GenerationRecord, error)
	Close() error
}

// InMemoryStore is a simple in-memory generation log used when no database
// DSN is configured and in tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []models.GenerationRecord
}

// NewInMemoryStore creates an empty in-memory generation store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// AddGeneration appends a generation record.
func (s *InMemoryStore) AddGeneration(rec models.GenerationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// GetGeneration returns the record with the given ID, or nil if absent.
func (s *InMemoryStore) GetGeneration(id string) (*models.GenerationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.records {
		if s.records[i].ID == id {
			rec := s.records[i]
			return &rec, nil
		}
	}
	return nil, nil
}

// ListGenerations returns the most recent records, newest first.
func (s *InMemoryStore) ListGenerations(limit int) ([]models.GenerationRecord, error) {
	if limit <= 0 {
		limit = DefaultGenerationListLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.GenerationRecord, len(s.records))
	copy(out, s.records)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error { return nil }
