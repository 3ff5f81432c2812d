// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session connects an editor workspace to a path index.
//
// The editor is represented by a Host (open folders and the focused file).
// A Manager owns one index.PathIndex, reacts to folder-opened and
// file-activated events, and can run reindexes in the background through
// the tasks package.
//
// # Key Types
//
//   - Host: read-only view of the editor workspace
//   - RootSet: mutable Host used by the CLI and HTTP server
//   - Listener: the events and queries an editor integration sends
//   - Manager: Listener implementation owning the index and task runner
//
// # Usage
//
//	host := session.NewRootSet("/home/me/site")
//	mgr := session.NewManager(host, session.DefaultConfig())
//	if err := mgr.Start(ctx); err != nil {
//	    log.Printf("initial index: %v", err)
//	}
//	defer mgr.Close()
//
//	mgr.OnFileActivated(ctx, "/home/me/site/new-page.html")
//	records := mgr.QueryCompletions("new", 10)
package session
