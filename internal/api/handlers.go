// Package api provides HTTP handlers for VibeRehab endpoints.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/viberehab/backend/internal/gateway"
	"github.com/viberehab/backend/internal/models"
	"github.com/viberehab/backend/internal/store"
	"github.com/viberehab/backend/internal/util"
)

// indexHandler serves the service banner (GET /).
func (s *Server) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONResponse(w, http.StatusNotFound, models.Failure("Not found"))
		return
	}
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message": "VibeRehab Backend API",
		"version": "1.0.0",
		"status":  "running",
	})
}

// healthHandler provides a health check endpoint for monitoring (GET /health).
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dashboardHandler returns the user profile and daily plan (GET /api/dashboard).
func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.dashboardHandler: processing dashboard request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.dashboardHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(w, http.StatusOK, s.tasks.Dashboard())
}

// completeTaskHandler marks a task complete (POST /api/progress/complete/{taskId}).
func (s *Server) completeTaskHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.completeTaskHandler: processing completion request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.completeTaskHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	idSegment := strings.TrimPrefix(r.URL.Path, "/api/progress/complete/")
	taskID, err := strconv.Atoi(idSegment)
	if err != nil || taskID <= 0 {
		slog.Warn("Server.completeTaskHandler: invalid task id", "segment", idSegment)
		writeJSONResponse(w, http.StatusBadRequest, models.Failure(models.ErrInvalidTaskID.Error()))
		return
	}

	result, err := s.progress.CompleteTask(taskID)
	if err != nil {
		writeJSONResponse(w, statusForError(err), models.Failure("Task not found"))
		return
	}
	writeJSONResponse(w, http.StatusOK, result)
}

// vibeStoryHandler generates a motivational story (GET /api/ai/vibestory).
func (s *Server) vibeStoryHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.vibeStoryHandler: processing story request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.vibeStoryHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gateway.DefaultUpstreamTimeout)
	defer cancel()

	story, err := s.gateway.GenerateStory(ctx)
	if err != nil {
		slog.Error("Server.vibeStoryHandler: story generation failed", "error", err)
		writeJSONResponse(w, statusForError(err), models.Failure(err.Error()))
		return
	}

	record := models.GenerationRecord{
		ID:        store.NewGenerationID(),
		Type:      models.GenerationTypeStory,
		Text:      story,
		WordCount: len(strings.Fields(story)),
		CreatedAt: time.Now(),
	}
	if err := s.generations.AddGeneration(record); err != nil {
		// The story was generated; losing the log entry is not a caller-facing failure.
		slog.Error("Server.vibeStoryHandler: failed to record generation", "error", err, "id", record.ID)
	}

	response := models.StoryResponse{
		StoryText: story,
		StoryID:   record.ID,
		WordCount: record.WordCount,
		Success:   true,
	}

	// Audio is optional output; a synthesis failure never fails the story.
	includeAudio := util.ParseBoolValue(r.URL.Query().Get("include_audio"), true)
	saveAudioPermanent := util.ParseBoolValue(r.URL.Query().Get("save_audio"), false)
	if includeAudio {
		if data, err := s.gateway.SynthesizeSpeech(ctx, story); err != nil {
			slog.Warn("Server.vibeStoryHandler: audio synthesis unavailable", "error", err, "storyId", record.ID)
		} else if info, err := s.audio.Save(data, "story_"+record.ID, saveAudioPermanent, "wav"); err != nil {
			slog.Error("Server.vibeStoryHandler: failed to save story audio", "error", err, "storyId", record.ID)
		} else {
			response.AudioURL = info.URL
			response.AudioFilename = info.Filename
			response.AudioSizeKB = info.SizeKB
		}
	}

	slog.Info("Server.vibeStoryHandler: story generated", "storyId", record.ID, "wordCount", record.WordCount, "audio", response.AudioURL != "")
	writeJSONResponse(w, http.StatusOK, response)
}

// generateScheduleHandler turns a task list into a daily time plan
// (POST /api/ai/generateschedule).
func (s *Server) generateScheduleHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.generateScheduleHandler: processing schedule request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.generateScheduleHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req models.ScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.generateScheduleHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Failure("Invalid JSON format"))
		return
	}
	if err := req.Validate(); err != nil {
		slog.Warn("Server.generateScheduleHandler: validation failed", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Failure(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), gateway.DefaultUpstreamTimeout)
	defer cancel()

	slots, err := s.gateway.GenerateSchedule(ctx, req.Tasks)
	if err != nil {
		slog.Error("Server.generateScheduleHandler: schedule generation failed", "error", err, "task_count", len(req.Tasks))
		writeJSONResponse(w, statusForError(err), models.Failure(err.Error()))
		return
	}

	record := models.GenerationRecord{
		ID:        store.NewGenerationID(),
		Type:      models.GenerationTypeSchedule,
		Schedule:  slots,
		TaskCount: len(slots),
		CreatedAt: time.Now(),
	}
	if err := s.generations.AddGeneration(record); err != nil {
		slog.Error("Server.generateScheduleHandler: failed to record generation", "error", err, "id", record.ID)
	}

	slog.Info("Server.generateScheduleHandler: schedule generated", "scheduleId", record.ID, "slot_count", len(slots))
	writeJSONResponse(w, http.StatusOK, models.ScheduleResponse{
		Schedule:   slots,
		ScheduleID: record.ID,
		TaskCount:  len(slots),
		Success:    true,
	})
}

// generationsHandler lists recent generation records (GET /api/ai/generations).
func (s *Server) generationsHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.generationsHandler: processing listing request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		slog.Warn("Server.generationsHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSONResponse(w, http.StatusBadRequest, models.Failure("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	records, err := s.generations.ListGenerations(limit)
	if err != nil {
		slog.Error("Server.generationsHandler: failed to list generations", "error", err)
		writeJSONResponse(w, http.StatusInternalServerError, models.Failure("Failed to fetch generations"))
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"generations": records,
		"count":       len(records),
	})
}
