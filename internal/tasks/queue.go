// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"
)

// ErrQueueFull is returned by Add when the queue has reached its size limit.
var ErrQueueFull = errors.New("queue is full")

// =============================================================================
// TASK QUEUE
// =============================================================================

// Queue manages a queue of background tasks with thread-safe operations.
type Queue struct {
	// tasks is the list of all tasks (both queued and completed)
	tasks []*Task

	// running tracks currently running tasks by ID
	running map[string]*Task

	// maxHistory is the maximum number of completed tasks to keep
	maxHistory int

	// maxQueueSize is the maximum number of queued tasks allowed (0 = unlimited)
	maxQueueSize int

	mu         sync.RWMutex
	notifyChan chan TaskNotification
	logger     *log.Logger
}

// TaskNotification represents a notification about a task state change.
type TaskNotification struct {
	TaskID      string
	Description string
	Status      TaskStatus
	Error       string
	Duration    time.Duration
}

// =============================================================================
// QUEUE CREATION
// =============================================================================

// NewQueueWithOptions creates a new task queue with custom settings.
// maxHistory: maximum number of completed tasks to keep (0 = unlimited)
// maxQueueSize: maximum number of queued tasks allowed (0 = unlimited)
func NewQueueWithOptions(maxHistory, maxQueueSize int) *Queue {
	return &Queue{
		tasks:        make([]*Task, 0),
		running:      make(map[string]*Task),
		maxHistory:   maxHistory,
		maxQueueSize: maxQueueSize,
		notifyChan:   make(chan TaskNotification, 100),
		logger:       log.Default(),
	}
}

// SetLogger replaces the logger used for dropped notifications.
func (q *Queue) SetLogger(logger *log.Logger) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.logger = logger
}

// =============================================================================
// TASK MANAGEMENT
// =============================================================================

// Add adds a new task to the queue.
// Returns ErrQueueFull if the queue has reached its maximum size.
func (q *Queue) Add(task *Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.addLocked(task)
}

func (q *Queue) addLocked(task *Task) error {
	if q.maxQueueSize > 0 {
		queuedCount := 0
		for _, t := range q.tasks {
			if t.GetStatus() == TaskStatusQueued {
				queuedCount++
			}
		}
		if queuedCount >= q.maxQueueSize {
			return fmt.Errorf("%w: %d queued tasks (max: %d)", ErrQueueFull, queuedCount, q.maxQueueSize)
		}
	}

	_ = task.SetStatus(TaskStatusQueued)
	q.tasks = append(q.tasks, task)
	return nil
}

// AddUnique adds task unless a queued or running task with the same Kind and
// Key exists, in which case that task's ID is returned instead.
// added reports whether task itself was queued.
func (q *Queue) AddUnique(task *Task) (id string, added bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, t := range q.tasks {
		if t.Kind == task.Kind && t.Key == task.Key && !t.IsComplete() {
			return t.ID, false, nil
		}
	}
	if err := q.addLocked(task); err != nil {
		return "", false, err
	}
	return task.ID, true, nil
}

// Get retrieves a copy of a task by ID.
// Returns nil if the task is not found.
func (q *Queue) Get(id string) *Task {
	q.mu.RLock()
	defer q.mu.RUnlock()

	for _, task := range q.tasks {
		if task.ID == id {
			return task.Clone()
		}
	}
	return nil
}

// Cancel cancels a task by ID.
// Returns true if the task was successfully canceled.
func (q *Queue) Cancel(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if task, ok := q.running[id]; ok {
		return task.Cancel()
	}

	for _, task := range q.tasks {
		if task.ID == id && task.GetStatus() == TaskStatusQueued {
			task.MarkCanceled()
			return true
		}
	}
	return false
}

// Claim marks up to n queued tasks as running and returns them.
// The runner uses it so a task can never be picked up twice.
func (q *Queue) Claim(n int) []*Task {
	q.mu.Lock()
	defer q.mu.Unlock()

	var claimed []*Task
	for _, task := range q.tasks {
		if len(claimed) >= n {
			break
		}
		if task.GetStatus() != TaskStatusQueued {
			continue
		}
		task.MarkStarted()
		q.running[task.ID] = task
		claimed = append(claimed, task)
	}
	return claimed
}

// MarkComplete marks a task as complete and removes it from running.
func (q *Queue) MarkComplete(task *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task.MarkComplete()
	delete(q.running, task.ID)

	q.notify(TaskNotification{
		TaskID:      task.ID,
		Description: task.Description,
		Status:      TaskStatusComplete,
		Duration:    task.Duration(),
	})
	q.cleanupLocked()
}

// MarkFailed marks a task as failed and removes it from running.
func (q *Queue) MarkFailed(task *Task, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task.SetError(err)
	delete(q.running, task.ID)

	q.notify(TaskNotification{
		TaskID:      task.ID,
		Description: task.Description,
		Status:      TaskStatusFailed,
		Error:       err.Error(),
		Duration:    task.Duration(),
	})
	q.cleanupLocked()
}

// MarkCanceled marks a task as canceled and removes it from running.
func (q *Queue) MarkCanceled(task *Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	task.MarkCanceled()
	delete(q.running, task.ID)

	q.notify(TaskNotification{
		TaskID:      task.ID,
		Description: task.Description,
		Status:      TaskStatusCanceled,
		Duration:    task.Duration(),
	})
	q.cleanupLocked()
}

// =============================================================================
// QUEUE QUERIES
// =============================================================================

// All returns a copy of all tasks.
func (q *Queue) All() []*Task {
	q.mu.RLock()
	defer q.mu.RUnlock()

	result := make([]*Task, len(q.tasks))
	for i, task := range q.tasks {
		result[i] = task.Clone()
	}
	return result
}

// =============================================================================
// NOTIFICATIONS
// =============================================================================

// Notifications returns the notification channel.
// Consumers can read from this channel to receive task completion notifications.
func (q *Queue) Notifications() <-chan TaskNotification {
	return q.notifyChan
}

// notify sends a notification (must be called with lock held).
func (q *Queue) notify(notification TaskNotification) {
	select {
	case q.notifyChan <- notification:
	default:
		q.logger.Printf("WARNING: Notification channel full, dropped notification for task %s (status: %s)",
			notification.TaskID, notification.Status)
	}
}

// =============================================================================
// CLEANUP
// =============================================================================

// cleanupLocked removes the oldest completed tasks beyond maxHistory, in
// slice order. Must be called with lock held.
func (q *Queue) cleanupLocked() {
	if q.maxHistory <= 0 {
		return
	}

	completedCount := 0
	for _, task := range q.tasks {
		if task.IsComplete() {
			completedCount++
		}
	}

	if completedCount > q.maxHistory {
		toRemove := completedCount - q.maxHistory
		newTasks := make([]*Task, 0, len(q.tasks)-toRemove)

		for _, task := range q.tasks {
			if task.IsComplete() && toRemove > 0 {
				toRemove--
				continue
			}
			newTasks = append(newTasks, task)
		}

		q.tasks = newTasks
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

// Summary returns a formatted summary of the queue.
func (q *Queue) Summary() string {
	q.mu.RLock()
	defer q.mu.RUnlock()

	running := len(q.running)
	queued, completed, failed := 0, 0, 0

	for _, task := range q.tasks {
		switch task.GetStatus() {
		case TaskStatusQueued:
			queued++
		case TaskStatusComplete:
			completed++
		case TaskStatusFailed:
			failed++
		}
	}

	return fmt.Sprintf("Running: %d | Queued: %d | Completed: %d | Failed: %d",
		running, queued, completed, failed)
}
