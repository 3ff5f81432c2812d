// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus represents the current state of a background task.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is waiting to be executed
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusRunning indicates the task is currently executing
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusComplete indicates the task finished successfully
	TaskStatusComplete TaskStatus = "Complete"

	// TaskStatusFailed indicates the task encountered an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled indicates the task was canceled
	TaskStatusCanceled TaskStatus = "Canceled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// Func is the work a task performs. It should return promptly once ctx is done.
type Func func(ctx context.Context, t *Task) error

// Task represents a background task that can run without blocking the caller.
type Task struct {
	// ID is a unique identifier for this task
	ID string `json:"id"`

	// Description is a human-readable description of what this task does
	Description string `json:"description"`

	// Kind groups tasks of the same sort (e.g., "reindex")
	Kind string `json:"kind"`

	// Key identifies the subject of the task (e.g., a root folder). Two active
	// tasks with the same Kind and Key do the same work.
	Key string `json:"key"`

	// Status is the current state of the task
	Status TaskStatus `json:"status"`

	// StartTime is when the task started running
	StartTime time.Time `json:"start_time"`

	// EndTime is when the task completed or failed
	EndTime time.Time `json:"end_time"`

	// Result is a short summary written by the task on success
	Result string `json:"result,omitempty"`

	// Error is the error message if the task failed
	Error string `json:"error,omitempty"`

	fn     Func
	cancel context.CancelFunc
	mu     sync.RWMutex
}

// =============================================================================
// TASK CREATION
// =============================================================================

// NewTask creates a new queued task.
func NewTask(description, kind, key string, fn Func) *Task {
	return &Task{
		ID:          uuid.New().String(),
		Description: description,
		Kind:        kind,
		Key:         key,
		Status:      TaskStatusQueued,
		fn:          fn,
	}
}

// =============================================================================
// TASK METHODS
// =============================================================================

// SetStatus updates the task status (thread-safe).
// Valid transitions: Queued -> Running -> Complete/Failed/Canceled
func (t *Task) SetStatus(status TaskStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.isValidTransition(t.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", t.Status, status)
	}

	t.Status = status
	return nil
}

// isValidTransition checks if a status transition is valid (must be called with lock held).
func (t *Task) isValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}

	switch from {
	case TaskStatusQueued:
		return to == TaskStatusRunning || to == TaskStatusCanceled
	case TaskStatusRunning:
		return to == TaskStatusComplete || to == TaskStatusFailed || to == TaskStatusCanceled
	default:
		// Terminal states
		return false
	}
}

// GetStatus returns the current task status (thread-safe).
func (t *Task) GetStatus() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// SetResult records the task's summary (thread-safe).
func (t *Task) SetResult(result string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Result = result
}

// GetResult returns the task's summary (thread-safe).
func (t *Task) GetResult() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Result
}

// SetError sets the error message and marks the task as failed (thread-safe).
// This bypasses status transition validation for internal use.
func (t *Task) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err != nil {
		t.Error = err.Error()
		t.Status = TaskStatusFailed
		t.EndTime = time.Now()
	}
}

// GetError returns the error message (thread-safe).
func (t *Task) GetError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Error
}

// MarkStarted marks the task as running (thread-safe).
func (t *Task) MarkStarted() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusRunning
	t.StartTime = time.Now()
}

// MarkComplete marks the task as successfully completed (thread-safe).
func (t *Task) MarkComplete() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusComplete
	t.EndTime = time.Now()
}

// MarkCanceled marks the task as canceled (thread-safe).
func (t *Task) MarkCanceled() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusCanceled
	t.EndTime = time.Now()
}

// SetCancelFunc stores the context cancel function for this task.
// Called once by the runner before the task's work starts.
func (t *Task) SetCancelFunc(cancel context.CancelFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancel = cancel
}

// Cancel cancels the task if it is queued or running.
// Returns true if the task was canceled.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Status != TaskStatusRunning && t.Status != TaskStatusQueued {
		return false
	}

	if t.cancel != nil {
		t.cancel()
	}

	t.Status = TaskStatusCanceled
	t.EndTime = time.Now()
	return true
}

// Duration returns how long the task has been running or took to complete.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.StartTime.IsZero() {
		return 0
	}
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// IsComplete returns true if the task has finished (success, failure, or canceled).
func (t *Task) IsComplete() bool {
	status := t.GetStatus()
	return status == TaskStatusComplete || status == TaskStatusFailed || status == TaskStatusCanceled
}

// Summary returns a one-line summary of the task.
func (t *Task) Summary() string {
	status := t.GetStatus()
	duration := t.Duration()

	summary := fmt.Sprintf("[%s] %s - %s", t.ID[:8], t.Description, status)
	if duration > 0 {
		summary += fmt.Sprintf(" (%.1fs)", duration.Seconds())
	}
	return summary
}

// Clone creates a copy of the task for reading. The clone cannot be run.
func (t *Task) Clone() *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return &Task{
		ID:          t.ID,
		Description: t.Description,
		Kind:        t.Kind,
		Key:         t.Key,
		Status:      t.Status,
		StartTime:   t.StartTime,
		EndTime:     t.EndTime,
		Result:      t.Result,
		Error:       t.Error,
	}
}
