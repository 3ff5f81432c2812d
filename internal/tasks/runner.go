// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoWork is returned when a task has no function to run.
var ErrNoWork = errors.New("task has no work function")

// =============================================================================
// TASK RUNNER
// =============================================================================

// Runner executes background tasks from a queue.
type Runner struct {
	queue         *Queue
	wg            sync.WaitGroup
	stop          chan struct{}
	stopOnce      sync.Once
	stopped       atomic.Bool
	maxConcurrent int
	semaphore     chan struct{}
	taskTimeout   time.Duration // 0 = no timeout
	pollInterval  time.Duration
}

// NewRunnerWithOptions creates a new task runner with custom settings.
// maxConcurrent: maximum number of tasks to run concurrently (default: 1)
// taskTimeout: timeout for each task (0 = no timeout)
func NewRunnerWithOptions(queue *Queue, maxConcurrent int, taskTimeout time.Duration) *Runner {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Runner{
		queue:         queue,
		stop:          make(chan struct{}),
		maxConcurrent: maxConcurrent,
		semaphore:     make(chan struct{}, maxConcurrent),
		taskTimeout:   taskTimeout,
		pollInterval:  50 * time.Millisecond,
	}
}

// =============================================================================
// RUNNER LIFECYCLE
// =============================================================================

// Start begins processing tasks from the queue.
func (r *Runner) Start() {
	go r.processLoop()
}

// Stop gracefully stops the runner and waits for running tasks to finish.
// Safe to call more than once.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.stopped.Store(true)
		close(r.stop)
	})
	r.wg.Wait()
}

// =============================================================================
// TASK PROCESSING
// =============================================================================

// processLoop continuously processes tasks from the queue.
func (r *Runner) processLoop() {
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			r.dispatch()
		}
	}
}

// dispatch starts as many queued tasks as there are free slots.
func (r *Runner) dispatch() {
	for !r.stopped.Load() {
		select {
		case r.semaphore <- struct{}{}:
		default:
			return
		}

		claimed := r.queue.Claim(1)
		if len(claimed) == 0 {
			<-r.semaphore
			return
		}

		r.wg.Add(1)
		go func(task *Task) {
			defer r.wg.Done()
			defer func() { <-r.semaphore }()
			r.executeTask(task)
		}(claimed[0])
	}
}

// executeTask runs a claimed task and records how it ended.
func (r *Runner) executeTask(task *Task) {
	var ctx context.Context
	var cancel context.CancelFunc
	if r.taskTimeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), r.taskTimeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()
	task.SetCancelFunc(cancel)

	err := runFunc(ctx, task)
	switch {
	case err == nil:
		r.queue.MarkComplete(task)
	case errors.Is(err, context.Canceled):
		r.queue.MarkCanceled(task)
	case errors.Is(err, context.DeadlineExceeded):
		r.queue.MarkFailed(task, fmt.Errorf("timed out after %v: %w", r.taskTimeout, err))
	default:
		r.queue.MarkFailed(task, err)
	}
}

// runFunc calls the task's work function, turning a panic into an error.
func runFunc(ctx context.Context, task *Task) (err error) {
	if task.fn == nil {
		return ErrNoWork
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("task panicked: %v", rec)
		}
	}()
	return task.fn(ctx, task)
}

// =============================================================================
// SYNCHRONOUS EXECUTION
// =============================================================================

// Execute runs a task synchronously on the calling goroutine, bypassing the
// queue. It is used by one-shot commands that need the result before exiting.
func Execute(ctx context.Context, task *Task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	task.SetCancelFunc(cancel)
	task.MarkStarted()

	err := runFunc(ctx, task)
	switch {
	case err == nil:
		task.MarkComplete()
	case errors.Is(err, context.Canceled):
		task.MarkCanceled()
	default:
		task.SetError(err)
	}
	return err
}
