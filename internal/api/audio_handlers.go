// Package api provides HTTP handlers for the generated-audio endpoints.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/viberehab/backend/internal/audio"
	"github.com/viberehab/backend/internal/models"
	"github.com/viberehab/backend/internal/util"
)

// audioHandler dispatches /api/audio/* requests.
func (s *Server) audioHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.audioHandler: processing audio request", "method", r.Method, "path", r.URL.Path)

	path := strings.TrimPrefix(r.URL.Path, "/api/audio")
	path = strings.TrimPrefix(path, "/")
	segments := strings.Split(path, "/")

	if len(segments) == 0 || segments[0] == "" {
		writeJSONResponse(w, http.StatusNotFound, models.Failure("Unknown audio endpoint"))
		return
	}

	switch segments[0] {
	case "list":
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Failure("Method not allowed"))
			return
		}
		s.listAudioHandler(w, r)
		return
	case "cleanup":
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Failure("Method not allowed"))
			return
		}
		s.cleanupAudioHandler(w, r)
		return
	}

	filename := segments[0]

	if len(segments) == 1 {
		// /api/audio/{filename}
		switch r.Method {
		case http.MethodGet:
			s.getAudioHandler(w, r, filename)
		case http.MethodDelete:
			s.deleteAudioHandler(w, r, filename)
		default:
			w.Header().Set("Allow", "GET, DELETE")
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Failure("Method not allowed"))
		}
		return
	}

	if len(segments) == 2 && segments[1] == "info" {
		// /api/audio/{filename}/info
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSONResponse(w, http.StatusMethodNotAllowed, models.Failure("Method not allowed"))
			return
		}
		s.audioInfoHandler(w, r, filename)
		return
	}

	writeJSONResponse(w, http.StatusNotFound, models.Failure("Unknown audio endpoint"))
}

// getAudioHandler streams an audio file (GET /api/audio/{filename}).
func (s *Server) getAudioHandler(w http.ResponseWriter, r *http.Request, filename string) {
	data, err := s.audio.Get(filename)
	if err != nil {
		if errors.Is(err, audio.ErrNotFound) {
			slog.Warn("Server.getAudioHandler: audio file not found", "filename", filename)
			writeJSONResponse(w, http.StatusNotFound, models.Failure("Audio file not found"))
			return
		}
		slog.Error("Server.getAudioHandler: failed to read audio file", "error", err, "filename", filename)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to read audio file"))
		return
	}
	w.Header().Set("Content-Type", audio.MIMEType(filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("Server.getAudioHandler: failed to write audio response", "error", err, "filename", filename)
	}
}

// audioInfoHandler returns audio file metadata (GET /api/audio/{filename}/info).
func (s *Server) audioInfoHandler(w http.ResponseWriter, r *http.Request, filename string) {
	info, err := s.audio.Info(filename)
	if err != nil {
		if errors.Is(err, audio.ErrNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Failure("Audio file not found"))
			return
		}
		slog.Error("Server.audioInfoHandler: failed to stat audio file", "error", err, "filename", filename)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to read audio file info"))
		return
	}
	writeJSONResponse(w, http.StatusOK, info)
}

// listAudioHandler lists stored audio files (GET /api/audio/list).
func (s *Server) listAudioHandler(w http.ResponseWriter, r *http.Request) {
	permanentOnly := util.ParseBoolValue(r.URL.Query().Get("permanent_only"), false)
	files, err := s.audio.List(permanentOnly)
	if err != nil {
		slog.Error("Server.listAudioHandler: failed to list audio files", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to list audio files"))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"files": files,
		"count": len(files),
	})
}

// deleteAudioHandler removes an audio file (DELETE /api/audio/{filename}).
func (s *Server) deleteAudioHandler(w http.ResponseWriter, r *http.Request, filename string) {
	if err := s.audio.Delete(filename); err != nil {
		if errors.Is(err, audio.ErrNotFound) {
			writeJSONResponse(w, http.StatusNotFound, models.Failure("Audio file not found"))
			return
		}
		slog.Error("Server.deleteAudioHandler: failed to delete audio file", "error", err, "filename", filename)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to delete audio file"))
		return
	}
	slog.Info("Server.deleteAudioHandler: audio file deleted", "filename", filename)
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"message":  fmt.Sprintf("Audio file %s deleted", filename),
		"filename": filename,
	})
}

// cleanupAudioHandler deletes aged temp files (POST /api/audio/cleanup).
func (s *Server) cleanupAudioHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	var req struct {
		MaxAgeHours int `json:"max_age_hours"`
	}
	// An empty or absent body means the default age.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSONResponse(w, http.StatusBadRequest, models.Failure("Invalid JSON format"))
		return
	}

	maxAge := time.Duration(req.MaxAgeHours) * time.Hour
	deleted, err := s.audio.CleanupTemp(maxAge)
	if err != nil {
		slog.Error("Server.cleanupAudioHandler: cleanup failed", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to clean up audio files"))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"deleted_count": deleted,
		"message":       fmt.Sprintf("Cleaned up %d temporary audio files", deleted),
	})
}
