// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// waitFor polls the queue until the task reaches a terminal state.
func waitFor(t *testing.T, q *Queue, id string) *Task {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if task := q.Get(id); task != nil && task.IsComplete() {
			return task
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("task %s did not finish", id)
	return nil
}

func TestRunnerExecutesTask(t *testing.T) {
	q := NewQueueWithOptions(10, 0)
	r := NewRunnerWithOptions(q, 1, 0)
	r.Start()
	defer r.Stop()

	task := NewTask("ok", "reindex", "/a", func(ctx context.Context, t *Task) error {
		t.SetResult("done")
		return nil
	})
	_ = q.Add(task)

	got := waitFor(t, q, task.ID)
	if got.Status != TaskStatusComplete || got.Result != "done" {
		t.Errorf("Unexpected task state: %+v", got)
	}
}

func TestRunnerRecordsFailure(t *testing.T) {
	q := NewQueueWithOptions(10, 0)
	r := NewRunnerWithOptions(q, 1, 0)
	r.Start()
	defer r.Stop()

	task := NewTask("fail", "reindex", "/a", func(ctx context.Context, t *Task) error {
		return errors.New("walk failed")
	})
	_ = q.Add(task)

	got := waitFor(t, q, task.ID)
	if got.Status != TaskStatusFailed || got.Error != "walk failed" {
		t.Errorf("Unexpected task state: %+v", got)
	}
}

func TestRunnerRecoversPanic(t *testing.T) {
	q := NewQueueWithOptions(10, 0)
	r := NewRunnerWithOptions(q, 1, 0)
	r.Start()
	defer r.Stop()

	task := NewTask("panic", "reindex", "/a", func(ctx context.Context, t *Task) error {
		panic("bad walker")
	})
	_ = q.Add(task)

	got := waitFor(t, q, task.ID)
	if got.Status != TaskStatusFailed {
		t.Errorf("Expected failed status, got %s", got.Status)
	}
}

func TestRunnerTimeout(t *testing.T) {
	q := NewQueueWithOptions(10, 0)
	r := NewRunnerWithOptions(q, 1, 20*time.Millisecond)
	r.Start()
	defer r.Stop()

	task := NewTask("slow", "reindex", "/a", func(ctx context.Context, t *Task) error {
		<-ctx.Done()
		return ctx.Err()
	})
	_ = q.Add(task)

	got := waitFor(t, q, task.ID)
	if got.Status != TaskStatusFailed {
		t.Errorf("Expected timeout to fail the task, got %s", got.Status)
	}
}

func TestRunnerCancelRunning(t *testing.T) {
	q := NewQueueWithOptions(10, 0)
	r := NewRunnerWithOptions(q, 1, 0)
	r.Start()
	defer r.Stop()

	started := make(chan struct{})
	task := NewTask("block", "reindex", "/a", func(ctx context.Context, t *Task) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	_ = q.Add(task)

	<-started
	if !q.Cancel(task.ID) {
		t.Fatal("Cancel should succeed on a running task")
	}
	got := waitFor(t, q, task.ID)
	if got.Status != TaskStatusCanceled {
		t.Errorf("Expected canceled, got %s", got.Status)
	}
}

func TestRunnerRespectsConcurrency(t *testing.T) {
	q := NewQueueWithOptions(0, 0)
	r := NewRunnerWithOptions(q, 2, 0)
	r.Start()
	defer r.Stop()

	var active, peak atomic.Int32
	ids := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		task := NewTask("work", "reindex", "", func(ctx context.Context, t *Task) error {
			n := active.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			active.Add(-1)
			return nil
		})
		_ = q.Add(task)
		ids = append(ids, task.ID)
	}

	for _, id := range ids {
		waitFor(t, q, id)
	}
	if peak.Load() > 2 {
		t.Errorf("Expected at most 2 concurrent tasks, saw %d", peak.Load())
	}
}

func TestExecuteSynchronous(t *testing.T) {
	task := NewTask("sync", "reindex", "/a", func(ctx context.Context, t *Task) error {
		t.SetResult("ok")
		return nil
	})

	if err := Execute(context.Background(), task); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if task.GetStatus() != TaskStatusComplete || task.GetResult() != "ok" {
		t.Errorf("Unexpected state after Execute: %s %q", task.GetStatus(), task.GetResult())
	}

	empty := NewTask("empty", "reindex", "", nil)
	if err := Execute(context.Background(), empty); !errors.Is(err, ErrNoWork) {
		t.Errorf("Expected ErrNoWork, got %v", err)
	}
}
