package models

import (
	"strings"
	"testing"
)

func TestScheduleRequestValidate_Valid(t *testing.T) {
	req := ScheduleRequest{Tasks: []string{"Knee Stretches", "10-min Walk"}}
	if err := req.Validate(); err != nil {
		t.Errorf("expected valid request, got %v", err)
	}
}

func TestScheduleRequestValidate_MissingTasks(t *testing.T) {
	req := ScheduleRequest{}
	if err := req.Validate(); err != ErrMissingTasks {
		t.Errorf("expected ErrMissingTasks, got %v", err)
	}
}

func TestScheduleRequestValidate_EmptyList(t *testing.T) {
	req := ScheduleRequest{Tasks: []string{}}
	if err := req.Validate(); err != ErrEmptyTaskList {
		t.Errorf("expected ErrEmptyTaskList, got %v", err)
	}
}

func TestScheduleRequestValidate_EmptyName(t *testing.T) {
	req := ScheduleRequest{Tasks: []string{"Knee Stretches", ""}}
	if err := req.Validate(); err != ErrEmptyTaskName {
		t.Errorf("expected ErrEmptyTaskName, got %v", err)
	}
}

func TestScheduleRequestValidate_TooManyTasks(t *testing.T) {
	tasks := make([]string, MaxScheduleTasks+1)
	for i := range tasks {
		tasks[i] = "task"
	}
	req := ScheduleRequest{Tasks: tasks}
	if err := req.Validate(); err != ErrTooManyTasks {
		t.Errorf("expected ErrTooManyTasks, got %v", err)
	}
}

func TestScheduleRequestValidate_NameTooLong(t *testing.T) {
	req := ScheduleRequest{Tasks: []string{strings.Repeat("x", MaxTaskNameLength+1)}}
	if err := req.Validate(); err != ErrTaskNameTooLong {
		t.Errorf("expected ErrTaskNameTooLong, got %v", err)
	}
}

func TestFailure(t *testing.T) {
	resp := Failure("something broke")
	if resp.Success {
		t.Error("expected Success to be false")
	}
	if resp.Error != "something broke" {
		t.Errorf("expected error message preserved, got %q", resp.Error)
	}
}
