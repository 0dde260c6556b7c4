// Package models defines the core data structures for the VibeRehab backend.
//
// It includes the patient dashboard types, the AI generation record types,
// and the request/response envelopes shared across modules.
package models

import (
	"errors"
	"time"
)

// Validation constants for input validation
const (
	// MaxScheduleTasks defines the maximum number of task names accepted by a
	// schedule generation request.
	MaxScheduleTasks = 50
	// MaxTaskNameLength defines the maximum allowed length for a task name.
	MaxTaskNameLength = 200
)

// Error variables for better error handling and testability
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrMissingTasks     = errors.New("missing 'tasks' field in request body")
	ErrEmptyTaskList    = errors.New("tasks must be a non-empty array")
	ErrEmptyTaskName    = errors.New("task names cannot be empty")
	ErrTooManyTasks     = errors.New("too many tasks in request")
	ErrTaskNameTooLong  = errors.New("task name exceeds maximum length")
	ErrInvalidTaskID    = errors.New("task id must be a positive integer")
)

// Task represents one prescribed exercise or activity for the patient's day.
type Task struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Icon      string `json:"icon"`
	Completed bool   `json:"completed"`
}

// User is the single-patient profile served on the dashboard.
// OverallProgress is derived from task completion and never stored
// independently of its derivation.
type User struct {
	Name            string  `json:"name"`
	OverallProgress float64 `json:"overallProgress"`
}

// Dashboard bundles everything the main page needs for the logged-in user.
type Dashboard struct {
	User      User   `json:"user"`
	DailyPlan []Task `json:"dailyPlan"`
}

// ScheduleSlot pairs a time-of-day label with a task name. Slots are produced
// by the AI gateway and returned to the caller in the order the model emits
// them; chronological ordering is not independently validated.
type ScheduleSlot struct {
	Time string `json:"time"`
	Task string `json:"task"`
}

// ScheduleRequest is the payload for POST /api/ai/generateschedule.
type ScheduleRequest struct {
	Tasks []string `json:"tasks"`
}

// Validate performs input validation on a ScheduleRequest.
func (r *ScheduleRequest) Validate() error {
	if r.Tasks == nil {
		return ErrMissingTasks
	}
	if len(r.Tasks) == 0 {
		return ErrEmptyTaskList
	}
	if len(r.Tasks) > MaxScheduleTasks {
		return ErrTooManyTasks
	}
	for _, task := range r.Tasks {
		if task == "" {
			return ErrEmptyTaskName
		}
		if len(task) > MaxTaskNameLength {
			return ErrTaskNameTooLong
		}
	}
	return nil
}

// CompletionResult is the response body for a successful task completion.
type CompletionResult struct {
	Success            bool    `json:"success"`
	TaskID             int     `json:"taskId"`
	NewOverallProgress float64 `json:"newOverallProgress"`
	Message            string  `json:"message"`
}

// StoryResponse is the response body for GET /api/ai/vibestory.
// The audio fields are set only when audio was requested and synthesized.
type StoryResponse struct {
	StoryText     string  `json:"storyText"`
	StoryID       string  `json:"storyId,omitempty"`
	WordCount     int     `json:"wordCount,omitempty"`
	AudioURL      string  `json:"audioUrl,omitempty"`
	AudioFilename string  `json:"audioFilename,omitempty"`
	AudioSizeKB   float64 `json:"audioSize,omitempty"`
	Success       bool    `json:"success"`
}

// ScheduleResponse is the response body for POST /api/ai/generateschedule.
type ScheduleResponse struct {
	Schedule   []ScheduleSlot `json:"schedule"`
	ScheduleID string         `json:"scheduleId,omitempty"`
	TaskCount  int            `json:"taskCount,omitempty"`
	Success    bool           `json:"success"`
}

// APIError is the standard failure envelope for all endpoints.
type APIError struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Failure creates the standard failure envelope with a message.
func Failure(message string) APIError {
	return APIError{Success: false, Error: message}
}

// GenerationType identifies what kind of output a generation record holds.
type GenerationType string

const (
	// GenerationTypeStory marks a motivational story generation.
	GenerationTypeStory GenerationType = "story"
	// GenerationTypeSchedule marks a task schedule generation.
	GenerationTypeSchedule GenerationType = "schedule"
)

// GenerationRecord captures one AI generation output for the generation log.
type GenerationRecord struct {
	ID        string         `json:"id"`
	Type      GenerationType `json:"type"`
	Text      string         `json:"text,omitempty"`
	Schedule  []ScheduleSlot `json:"schedule,omitempty"`
	WordCount int            `json:"wordCount,omitempty"`
	TaskCount int            `json:"taskCount,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}
