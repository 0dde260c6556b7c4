// Package store provides storage backends for the VibeRehab backend.
//
// This file implements the in-memory task store. Task state is deliberately
// not durable: the store is seeded at process start and reset on restart.
package store

import (
	"fmt"
	"math"
	"sync"

	"github.com/viberehab/backend/internal/models"
)

// DefaultPatientName is the display name seeded for the prototype's single
// patient.
const DefaultPatientName = "Alex"

// TaskStore holds the patient's daily plan in memory. All access goes through
// the mutex so that the complete-then-recompute sequence is a single logical
// operation even under concurrent requests.
type TaskStore struct {
	mu    sync.RWMutex
	name  string
	order []int
	tasks map[int]*models.Task
}

// NewTaskStore creates a task store seeded with the prototype's mock daily
// plan.
func NewTaskStore() *TaskStore {
	return NewTaskStoreWithTasks(DefaultPatientName, []models.Task{
		{ID: 1, Label: "Morning Meditation", Icon: "ph-leaf", Completed: true},
		{ID: 2, Label: "Knee Stretches", Icon: "ph-person-simple-run", Completed: false},
		{ID: 3, Label: "10-min Walk", Icon: "ph-person-simple-walk", Completed: false},
	})
}

// NewTaskStoreWithTasks creates a task store seeded with the given tasks.
// Duplicate task IDs are rejected by keeping only the first occurrence.
func NewTaskStoreWithTasks(name string, tasks []models.Task) *TaskStore {
	s := &TaskStore{
		name:  name,
		tasks: make(map[int]*models.Task, len(tasks)),
	}
	for _, t := range tasks {
		if _, exists := s.tasks[t.ID]; exists {
			continue
		}
		task := t
		s.tasks[t.ID] = &task
		s.order = append(s.order, t.ID)
	}
	return s
}

// Dashboard returns a consistent snapshot of the user profile and daily plan.
func (s *TaskStore) Dashboard() models.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	plan := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		plan = append(plan, *s.tasks[id])
	}
	return models.Dashboard{
		User:      models.User{Name: s.name, OverallProgress: s.progressLocked()},
		DailyPlan: plan,
	}
}

// CompleteTask marks the task as completed and returns the recomputed overall
// progress. Completing an already-completed task succeeds and leaves progress
// unchanged. Unknown IDs return models.ErrTaskNotFound without mutating the
// store.
func (s *TaskStore) CompleteTask(taskID int) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok {
		return 0, fmt.Errorf("%w: id %d", models.ErrTaskNotFound, taskID)
	}
	task.Completed = true
	return s.progressLocked(), nil
}

// Progress returns the current overall progress fraction in [0, 1].
func (s *TaskStore) Progress() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

// progressLocked computes completed-count / total-count. Callers must hold
// the mutex.
func (s *TaskStore) progressLocked() float64 {
	if len(s.tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range s.tasks {
		if t.Completed {
			completed++
		}
	}
	// Two-decimal rounding keeps the reported value monotonic and within
	// [0, 1] for any completed/total ratio.
	return math.Round(float64(completed)/float64(len(s.tasks))*100) / 100
}
