// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides a background task system for long-running operations.
//
// Folder reindexing is proportional to the number of files under a root and
// must not block the caller that noticed a folder being opened. This package
// queues such work and runs it on worker goroutines.
//
// # Key Types
//
//   - Task: a unit of background work with a status and a result
//   - Queue: task list with history limits and completion notifications
//   - Runner: executes queued tasks with a concurrency cap and timeout
//   - TaskStatus: Queued, Running, Complete, Failed, Canceled
//
// # Usage
//
// Create and queue a task:
//
//	queue := tasks.NewQueueWithOptions(20, 0)
//	runner := tasks.NewRunnerWithOptions(queue, 1, 0)
//	runner.Start()
//	defer runner.Stop()
//
//	task := tasks.NewTask("Reindex /srv/site", "reindex", "/srv/site",
//	    func(ctx context.Context, t *tasks.Task) error {
//	        _, err := idx.ReindexRoot(ctx, "/srv/site")
//	        return err
//	    })
//	queue.Add(task)
//
// Wait for completion:
//
//	for n := range queue.Notifications() {
//	    if n.TaskID == task.ID {
//	        fmt.Println(n.Status)
//	    }
//	}
package tasks
