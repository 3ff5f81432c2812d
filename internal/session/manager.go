// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/tasks"
)

// ErrOutsideRoots is returned by ContainingRoot when no open root holds a path.
var ErrOutsideRoots = errors.New("path is outside every open root")

// KindReindex is the task kind used for background reindexes.
const KindReindex = "reindex"

// =============================================================================
// CONFIGURATION
// =============================================================================

// Config holds configuration for the session manager.
type Config struct {
	// Index configures the owned PathIndex.
	Index index.Options

	// ReindexTimeout bounds each reindex (0 = no limit).
	ReindexTimeout time.Duration

	// MaxConcurrent is how many background reindexes may run at once (default: 1)
	MaxConcurrent int

	// MaxHistory is how many finished tasks to remember (default: 50)
	MaxHistory int

	// MaxQueue caps queued background reindexes (0 = unlimited)
	MaxQueue int

	// Logger receives lifecycle messages. Nil discards them.
	Logger *log.Logger
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		Index:         index.DefaultOptions(),
		MaxConcurrent: 1,
		MaxHistory:    50,
	}
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager connects an editor Host to one PathIndex. It decides which root a
// file belongs to, when a root needs a full walk, and runs reindexes either
// inline or on a background runner.
type Manager struct {
	sessionID string
	startTime time.Time

	host   Host
	idx    *index.PathIndex
	queue  *tasks.Queue
	runner *tasks.Runner
	logger *log.Logger

	reindexTimeout time.Duration

	done      chan struct{}
	watchers  sync.WaitGroup
	startOnce sync.Once
	closeOnce sync.Once
}

var _ Listener = (*Manager)(nil)

// NewManager creates a session over host. Call Start to index the open roots
// and Close when done.
func NewManager(host Host, cfg Config) *Manager {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if cfg.Index.Logger == nil {
		cfg.Index.Logger = logger
	}

	queue := tasks.NewQueueWithOptions(cfg.MaxHistory, cfg.MaxQueue)
	queue.SetLogger(logger)

	return &Manager{
		sessionID:      "sess_" + uuid.New().String(),
		startTime:      time.Now(),
		host:           host,
		idx:            index.New(cfg.Index),
		queue:          queue,
		runner:         tasks.NewRunnerWithOptions(queue, cfg.MaxConcurrent, 0),
		logger:         logger,
		reindexTimeout: cfg.ReindexTimeout,
		done:           make(chan struct{}),
	}
}

// SessionID returns the session's unique ID.
func (m *Manager) SessionID() string { return m.sessionID }

// Index returns the PathIndex the session feeds.
func (m *Manager) Index() *index.PathIndex { return m.idx }

// Host returns the host the session was created with.
func (m *Manager) Host() Host { return m.host }

// =============================================================================
// LIFECYCLE
// =============================================================================

// Start begins background processing and indexes every open root. A root
// that fails does not stop the others; all failures are joined.
func (m *Manager) Start(ctx context.Context) error {
	m.startOnce.Do(func() {
		m.runner.Start()
		m.watchers.Add(1)
		go m.watchTasks()
	})
	m.logger.Printf("session %s starting", m.sessionID)
	_, err := m.ReindexAll(ctx)
	return err
}

// Close stops the background runner, canceling nothing that already runs but
// waiting for it to finish. Safe to call more than once.
func (m *Manager) Close() {
	m.closeOnce.Do(func() {
		m.startOnce.Do(func() {})
		m.runner.Stop()
		close(m.done)
		m.watchers.Wait()
		m.logger.Printf("session %s closed after %s", m.sessionID, FormatDuration(time.Since(m.startTime)))
	})
}

// watchTasks logs background task outcomes until Close. Notifications
// still buffered at Close are logged before it returns.
func (m *Manager) watchTasks() {
	defer m.watchers.Done()
	notifications := m.queue.Notifications()
	for {
		select {
		case n := <-notifications:
			m.logTask(n)
		case <-m.done:
			for {
				select {
				case n := <-notifications:
					m.logTask(n)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) logTask(n tasks.TaskNotification) {
	if n.Error != "" {
		m.logger.Printf("task %s %s: %s: %s", n.TaskID, n.Status, n.Description, n.Error)
		return
	}
	m.logger.Printf("task %s %s: %s (%s)", n.TaskID, n.Status, n.Description, n.Duration.Round(time.Millisecond))
}

// =============================================================================
// REINDEXING
// =============================================================================

// TriggerReindex walks root now and returns when it is done.
func (m *Manager) TriggerReindex(ctx context.Context, root string) (index.Result, error) {
	if m.reindexTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.reindexTimeout)
		defer cancel()
	}
	return m.idx.ReindexRoot(ctx, root)
}

// ReindexAll walks every open root in order.
func (m *Manager) ReindexAll(ctx context.Context) ([]index.Result, error) {
	var results []index.Result
	var errs []error
	for _, root := range m.host.OpenRoots() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := m.TriggerReindex(ctx, root)
		if err != nil {
			m.logger.Printf("reindex %s: %v", root, err)
			errs = append(errs, err)
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// ScheduleReindex queues a background walk of root and returns the task ID.
// If a reindex of the same root is already queued or running, its ID is
// returned and nothing new is queued.
func (m *Manager) ScheduleReindex(root string) (string, error) {
	if root == "" {
		return "", fmt.Errorf("%w: empty", index.ErrInvalidRoot)
	}
	root = cleanPath(root)

	task := tasks.NewTask("Reindex "+root, KindReindex, root, func(ctx context.Context, t *tasks.Task) error {
		res, err := m.TriggerReindex(ctx, root)
		if err != nil {
			return err
		}
		t.SetResult(res.String())
		return nil
	})

	id, added, err := m.queue.AddUnique(task)
	if err != nil {
		return "", fmt.Errorf("schedule reindex %s: %w", root, err)
	}
	if added {
		m.logger.Printf("queued reindex of %s as task %s", root, id)
	}
	return id, nil
}

// Task returns a snapshot of a background task, or nil if unknown.
func (m *Manager) Task(id string) *tasks.Task {
	return m.queue.Get(id)
}

// Tasks returns snapshots of every remembered task.
func (m *Manager) Tasks() []*tasks.Task {
	return m.queue.All()
}

// CancelTask cancels a queued or running background task.
func (m *Manager) CancelTask(id string) bool {
	return m.queue.Cancel(id)
}

// =============================================================================
// EDITOR EVENTS
// =============================================================================

// FolderOpened implements Listener by indexing root inline.
func (m *Manager) FolderOpened(ctx context.Context, root string) error {
	_, err := m.TriggerReindex(ctx, root)
	return err
}

// FileActivated implements Listener.
func (m *Manager) FileActivated(ctx context.Context, path string) (bool, error) {
	return m.OnFileActivated(ctx, path)
}

// OnFileActivated makes sure a file the user just focused is known.
//
// Known files and files outside every open root are left alone. If the
// containing root was never fully indexed it is walked now; otherwise only
// the one file is added. Returns true if the index learned the file.
func (m *Manager) OnFileActivated(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	path = cleanPath(path)
	if m.idx.IsKnown(path) {
		return false, nil
	}

	root, err := m.ContainingRoot(path)
	if err != nil {
		return false, nil
	}

	if !m.idx.IsIndexed(root) {
		m.logger.Printf("%s activated in unindexed root %s", path, root)
		if _, err := m.TriggerReindex(ctx, root); err != nil {
			return m.idx.IsKnown(path), err
		}
		return m.idx.IsKnown(path), nil
	}

	return m.idx.IndexSingleFile(path, root), nil
}

// SyncActive reads the host's active file and handles it as an activation.
func (m *Manager) SyncActive(ctx context.Context) (bool, error) {
	path, ok := m.host.ActiveFile()
	if !ok {
		return false, nil
	}
	return m.OnFileActivated(ctx, path)
}

// QueryCompletions implements Listener.
func (m *Manager) QueryCompletions(prefix string, limit int) []index.CompletionRecord {
	return m.idx.Query(prefix, limit)
}

// ContainingRoot returns the deepest open root that holds path.
func (m *Manager) ContainingRoot(path string) (string, error) {
	path = cleanPath(path)
	best := ""
	for _, root := range m.host.OpenRoots() {
		root = cleanPath(root)
		if root == "" || !index.Contains(root, path) {
			continue
		}
		if len(root) > len(best) {
			best = root
		}
	}
	if best == "" {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoots, filepath.ToSlash(path))
	}
	return best, nil
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	SessionID string      `json:"session_id"`
	StartTime time.Time   `json:"start_time"`
	Uptime    string      `json:"uptime"`
	OpenRoots []string    `json:"open_roots"`
	Index     index.Stats `json:"index"`
	Tasks     string      `json:"tasks"`
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	return Status{
		SessionID: m.sessionID,
		StartTime: m.startTime,
		Uptime:    FormatDuration(time.Since(m.startTime)),
		OpenRoots: m.host.OpenRoots(),
		Index:     m.idx.Stats(),
		Tasks:     m.queue.Summary(),
	}
}

// FormatDuration returns a human-readable duration string.
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	mins := int(d.Minutes())
	secs := int(d.Seconds()) % 60
	if secs == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dm %ds", mins, secs)
}
