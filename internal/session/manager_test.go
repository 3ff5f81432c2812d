// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/tasks"
)

func writeFiles(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, rel := range rels {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}
}

func newManager(t *testing.T, roots ...string) (*Manager, *RootSet) {
	t.Helper()
	host := NewRootSet(roots...)
	m := NewManager(host, DefaultConfig())
	t.Cleanup(m.Close)
	return m, host
}

// deadlineWalker records whether the walk context carried a deadline.
type deadlineWalker struct {
	hasDeadline bool
}

func (w *deadlineWalker) Walk(ctx context.Context, root string, fn index.WalkFunc) error {
	_, w.hasDeadline = ctx.Deadline()
	return nil
}

func TestDefaultConfig_ReindexHasNoDeadline(t *testing.T) {
	cfg := DefaultConfig()
	assert.Zero(t, cfg.ReindexTimeout)

	walker := &deadlineWalker{}
	cfg.Index.Walker = walker
	m := NewManager(NewRootSet(), cfg)
	defer m.Close()

	_, err := m.TriggerReindex(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.False(t, walker.hasDeadline)
	assert.Len(t, m.Index().Roots(), 1, "a walk without a deadline completes and marks the root")

	cfg.ReindexTimeout = time.Minute
	bounded := NewManager(NewRootSet(), cfg)
	defer bounded.Close()
	_, err = bounded.TriggerReindex(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.True(t, walker.hasDeadline)
}

// =============================================================================
// ROOT SET TESTS
// =============================================================================

func TestRootSet(t *testing.T) {
	dir := t.TempDir()
	rs := NewRootSet(dir, dir, "")

	assert.Equal(t, []string{dir}, rs.OpenRoots())
	assert.False(t, rs.Add(dir+string(filepath.Separator)), "trailing separator is the same root")

	other := filepath.Join(dir, "other")
	assert.True(t, rs.Add(other))
	assert.Equal(t, []string{dir, other}, rs.OpenRoots())

	assert.True(t, rs.Remove(dir))
	assert.False(t, rs.Remove(dir))
	assert.Equal(t, []string{other}, rs.OpenRoots())

	_, ok := rs.ActiveFile()
	assert.False(t, ok)
	rs.SetActive(filepath.Join(other, "a.html"))
	active, ok := rs.ActiveFile()
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(other, "a.html"), active)
	rs.SetActive("")
	_, ok = rs.ActiveFile()
	assert.False(t, ok)
}

func TestRootSet_OpenRootsIsCopy(t *testing.T) {
	dir := t.TempDir()
	rs := NewRootSet(dir)
	roots := rs.OpenRoots()
	roots[0] = "changed"
	assert.Equal(t, []string{dir}, rs.OpenRoots())
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestManager_StartIndexesOpenRoots(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, "index.html")
	writeFiles(t, b, "css/site.css")

	m, _ := newManager(t, a, b)
	require.NoError(t, m.Start(context.Background()))

	assert.True(t, m.Index().IsIndexed(a))
	assert.True(t, m.Index().IsIndexed(b))
	assert.Len(t, m.QueryCompletions("", 0), 4)
	assert.NotEmpty(t, m.SessionID())
}

func TestManager_StartContinuesPastBadRoot(t *testing.T) {
	good := t.TempDir()
	writeFiles(t, good, "index.html")
	missing := filepath.Join(t.TempDir(), "missing")

	m, _ := newManager(t, missing, good)
	err := m.Start(context.Background())

	require.Error(t, err)
	assert.True(t, errors.Is(err, index.ErrInvalidRoot))
	assert.True(t, m.Index().IsIndexed(good))
}

func TestManager_CloseTwice(t *testing.T) {
	m, _ := newManager(t)
	m.Close()
	m.Close()
}

// =============================================================================
// ACTIVATION TESTS
// =============================================================================

func TestOnFileActivated_KnownFileIsNoop(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "index.html")
	m, _ := newManager(t, root)
	require.NoError(t, m.Start(context.Background()))

	before := len(m.QueryCompletions("", 0))
	added, err := m.OnFileActivated(context.Background(), filepath.Join(root, "index.html"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, m.QueryCompletions("", 0), before)
}

func TestOnFileActivated_OutsideRootsIsNoop(t *testing.T) {
	root, elsewhere := t.TempDir(), t.TempDir()
	writeFiles(t, elsewhere, "stray.html")
	m, _ := newManager(t, root)
	require.NoError(t, m.Start(context.Background()))

	added, err := m.OnFileActivated(context.Background(), filepath.Join(elsewhere, "stray.html"))
	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, m.QueryCompletions("", 0))

	_, err = m.ContainingRoot(filepath.Join(elsewhere, "stray.html"))
	assert.ErrorIs(t, err, ErrOutsideRoots)
}

func TestOnFileActivated_UnindexedRootIsWalked(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html", "b/c.html")

	// The root was opened but never indexed.
	m, _ := newManager(t, root)

	added, err := m.OnFileActivated(context.Background(), filepath.Join(root, "a.html"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, m.Index().IsIndexed(root))
	assert.True(t, m.Index().IsKnown(filepath.Join(root, "b", "c.html")), "sibling files come with the walk")
}

func TestOnFileActivated_IndexedRootAddsSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html")
	m, _ := newManager(t, root)
	require.NoError(t, m.Start(context.Background()))

	// Created after the initial walk.
	writeFiles(t, root, "new.html", "other.html")

	added, err := m.OnFileActivated(context.Background(), filepath.Join(root, "new.html"))
	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, m.Index().IsKnown(filepath.Join(root, "new.html")))
	assert.False(t, m.Index().IsKnown(filepath.Join(root, "other.html")), "only the activated file is added")
	assert.Equal(t, []string{"new.html"}, index.Triggers(m.QueryCompletions("new", 1)))
}

func TestOnFileActivated_EmptyPath(t *testing.T) {
	m, _ := newManager(t, t.TempDir())
	added, err := m.OnFileActivated(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, added)
}

func TestContainingRoot_Deepest(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "sub")
	writeFiles(t, outer, "sub/page.html")

	m, _ := newManager(t, outer, inner)
	root, err := m.ContainingRoot(filepath.Join(inner, "page.html"))
	require.NoError(t, err)
	assert.Equal(t, inner, root)

	root, err = m.ContainingRoot(filepath.Join(outer, "top.html"))
	require.NoError(t, err)
	assert.Equal(t, outer, root)
}

func TestSyncActive(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html")
	m, host := newManager(t, root)
	require.NoError(t, m.Start(context.Background()))

	added, err := m.SyncActive(context.Background())
	require.NoError(t, err)
	assert.False(t, added, "no active file")

	writeFiles(t, root, "later.html")
	host.SetActive(filepath.Join(root, "later.html"))
	added, err = m.SyncActive(context.Background())
	require.NoError(t, err)
	assert.True(t, added)
}

func TestListenerInterface(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "about.html")
	m, _ := newManager(t, root)

	var l Listener = m
	require.NoError(t, l.FolderOpened(context.Background(), root))
	assert.Equal(t, []string{"about.html", "about.html"}, index.Triggers(l.QueryCompletions("about", 0)))
}

// =============================================================================
// BACKGROUND REINDEX TESTS
// =============================================================================

func waitForTask(t *testing.T, m *Manager, id string) *tasks.Task {
	t.Helper()
	var task *tasks.Task
	require.Eventually(t, func() bool {
		task = m.Task(id)
		return task != nil && task.IsComplete()
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestScheduleReindex(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html", "b.html")

	host := NewRootSet()
	m := NewManager(host, DefaultConfig())
	t.Cleanup(m.Close)
	require.NoError(t, m.Start(context.Background()))

	id, err := m.ScheduleReindex(root)
	require.NoError(t, err)

	task := waitForTask(t, m, id)
	assert.Equal(t, tasks.TaskStatusComplete, task.Status)
	assert.Contains(t, task.Result, "2 scanned")
	assert.True(t, m.Index().IsIndexed(root))
}

func TestBackgroundTasksAreLogged(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html")
	missing := filepath.Join(t.TempDir(), "missing")

	var buf bytes.Buffer
	cfg := DefaultConfig()
	cfg.Logger = log.New(&buf, "", 0)
	m := NewManager(NewRootSet(), cfg)
	require.NoError(t, m.Start(context.Background()))

	ok, err := m.ScheduleReindex(root)
	require.NoError(t, err)
	bad, err := m.ScheduleReindex(missing)
	require.NoError(t, err)
	waitForTask(t, m, ok)
	waitForTask(t, m, bad)
	m.Close()

	out := buf.String()
	assert.Contains(t, out, "task "+ok+" Complete: Reindex "+root)
	assert.Contains(t, out, "task "+bad+" Failed: Reindex "+missing)
	assert.NotContains(t, out, "dropped notification")
}

func TestScheduleReindex_ReusesActiveTask(t *testing.T) {
	root := t.TempDir()

	// Not started, so nothing leaves the queue.
	m, _ := newManager(t)
	first, err := m.ScheduleReindex(root)
	require.NoError(t, err)
	second, err := m.ScheduleReindex(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := m.ScheduleReindex(t.TempDir())
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	assert.True(t, m.CancelTask(first))
	assert.Len(t, m.Tasks(), 2)
}

func TestScheduleReindex_EmptyRoot(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.ScheduleReindex("")
	assert.ErrorIs(t, err, index.ErrInvalidRoot)
}

func TestScheduleReindex_FailureRecorded(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.Start(context.Background()))

	id, err := m.ScheduleReindex(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)

	task := waitForTask(t, m, id)
	assert.Equal(t, tasks.TaskStatusFailed, task.Status)
	assert.Contains(t, task.Error, "invalid root")
}

// =============================================================================
// STATUS TESTS
// =============================================================================

func TestGetStatus(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.html")
	m, _ := newManager(t, root)
	require.NoError(t, m.Start(context.Background()))

	status := m.GetStatus()
	assert.Equal(t, m.SessionID(), status.SessionID)
	assert.Equal(t, []string{root}, status.OpenRoots)
	assert.Equal(t, 1, status.Index.KnownPaths)
	assert.Equal(t, 2, status.Index.Records)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{5 * time.Second, "5s"},
		{2 * time.Minute, "2m"},
		{2*time.Minute + 30*time.Second, "2m 30s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
