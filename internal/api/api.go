// Package api provides HTTP handlers and the main API server logic for the
// VibeRehab backend.
//
// It exposes RESTful endpoints for the patient dashboard, task completion,
// AI story and schedule generation, and generated audio files. The API
// integrates with the progress, gateway, store, and audio modules.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/viberehab/backend/internal/audio"
	"github.com/viberehab/backend/internal/gateway"
	"github.com/viberehab/backend/internal/genai"
	"github.com/viberehab/backend/internal/models"
	"github.com/viberehab/backend/internal/progress"
	"github.com/viberehab/backend/internal/store"
)

// Default server configuration constants
const (
	// DefaultAddr is the listen address when none is configured.
	DefaultAddr = ":5000"
	// DefaultAudioDir is the directory for generated audio files when none
	// is configured.
	DefaultAudioDir = "audio_outputs"
)

// Opts holds configuration for the API server.
type Opts struct {
	Addr     string
	AudioDir string
}

// Option configures API server construction.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithAudioDir sets the directory for generated audio files.
func WithAudioDir(dir string) Option {
	return func(o *Opts) { o.AudioDir = dir }
}

// Server carries the injected dependencies for all handlers. Handlers never
// reach for package-level state, so tests construct fresh servers with fake
// collaborators.
type Server struct {
	tasks       *store.TaskStore
	progress    *progress.Service
	generations store.GenerationStore
	gateway     gateway.Generator
	audio       *audio.Manager
}

// NewServer creates an API server from its collaborators.
func NewServer(tasks *store.TaskStore, svc *progress.Service, generations store.GenerationStore, gen gateway.Generator, audioMgr *audio.Manager) *Server {
	return &Server{
		tasks:       tasks,
		progress:    svc,
		generations: generations,
		gateway:     gen,
		audio:       audioMgr,
	}
}

// Handler builds the route table wrapped in the recovery and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.indexHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/api/dashboard", s.dashboardHandler)
	mux.HandleFunc("/api/progress/complete/", s.completeTaskHandler)
	mux.HandleFunc("/api/ai/vibestory", s.vibeStoryHandler)
	mux.HandleFunc("/api/ai/generateschedule", s.generateScheduleHandler)
	mux.HandleFunc("/api/ai/generations", s.generationsHandler)
	mux.HandleFunc("/api/audio/", s.audioHandler)
	return recoverMiddleware(corsMiddleware(mux))
}

// Run wires up the service modules from their options and serves HTTP until
// the listener fails. A missing model API key degrades the AI endpoints
// rather than aborting startup.
func Run(storeOpts []store.Option, genaiOpts []genai.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	addr := cfg.Addr
	if addr == "" {
		addr = DefaultAddr
	}
	audioDir := cfg.AudioDir
	if audioDir == "" {
		audioDir = DefaultAudioDir
	}

	generations, err := buildGenerationStore(storeOpts)
	if err != nil {
		return err
	}
	defer func() {
		if err := generations.Close(); err != nil {
			slog.Error("api.Run: failed to close generation store", "error", err)
		}
	}()

	var gen gateway.Generator
	client, err := genai.NewClient(genaiOpts...)
	switch {
	case err == nil:
		gen = gateway.New(client)
	case errors.Is(err, genai.ErrAPIKeyNotSet):
		slog.Warn("api.Run: no model API key configured; AI endpoints will report upstream unavailable")
		gen = gateway.New(nil)
	default:
		return err
	}

	audioMgr, err := audio.NewManager(audioDir)
	if err != nil {
		return err
	}

	tasks := store.NewTaskStore()
	srv := NewServer(tasks, progress.NewService(tasks), generations, gen, audioMgr)

	slog.Info("api.Run: VibeRehab API running", "addr", addr)
	return http.ListenAndServe(addr, srv.Handler())
}

// buildGenerationStore selects the generation log backend from the DSN.
func buildGenerationStore(storeOpts []store.Option) (store.GenerationStore, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Debug("api.buildGenerationStore: no DSN configured, using in-memory generation store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Debug("api.buildGenerationStore: using PostgreSQL generation store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Debug("api.buildGenerationStore: using SQLite generation store", "db_path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// recoverMiddleware converts handler panics into a JSON 500 so no fault can
// crash the server process.
func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("api.recoverMiddleware: handler panicked", "panic", rec, "path", r.URL.Path)
				writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware enables cross-origin requests from the prototype frontend.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
