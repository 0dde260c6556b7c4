// Package progress implements the task completion service.
//
// It mediates all mutations of the task store: marking a task complete and
// recomputing the patient's overall progress happen as one operation.
package progress

import (
	"fmt"
	"log/slog"

	"github.com/viberehab/backend/internal/models"
	"github.com/viberehab/backend/internal/store"
)

// Service marks tasks complete against an injected task store.
type Service struct {
	tasks *store.TaskStore
}

// NewService creates a progress service backed by the given task store.
func NewService(tasks *store.TaskStore) *Service {
	return &Service{tasks: tasks}
}

// CompleteTask marks the task complete and returns the completion result with
// the recomputed overall progress. Completing an already-completed task is
// idempotent. Unknown task IDs return models.ErrTaskNotFound and leave the
// store unchanged.
func (s *Service) CompleteTask(taskID int) (models.CompletionResult, error) {
	newProgress, err := s.tasks.CompleteTask(taskID)
	if err != nil {
		slog.Warn("Service.CompleteTask: completion failed", "error", err, "taskID", taskID)
		return models.CompletionResult{}, err
	}
	slog.Info("Service.CompleteTask: task completed", "taskID", taskID, "newOverallProgress", newProgress)
	return models.CompletionResult{
		Success:            true,
		TaskID:             taskID,
		NewOverallProgress: newProgress,
		Message:            fmt.Sprintf("Task %d marked as complete", taskID),
	}, nil
}
