// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes a completion session over JSON/HTTP so editor
// plugins can report workspace events and query link completions.
//
// # Endpoints
//
//   - GET    /health              - Health check
//   - GET    /stats               - Session and index statistics
//   - GET    /v1/roots            - Open roots and whether each is indexed
//   - POST   /v1/roots            - Folder opened; queues a reindex (202)
//   - POST   /v1/reindex          - Reindex one or all roots, inline or queued
//   - POST   /v1/activate         - File focused in the editor
//   - GET    /v1/completions      - Filtered completion records
//   - GET    /v1/known            - Whether a path is indexed
//   - GET    /v1/tasks[/{id}]     - Background task status
//   - DELETE /v1/tasks/{id}       - Cancel a background task
//
// # Middleware
//
// Panic recovery, request logging, security headers, per-IP rate limiting
// (golang.org/x/time/rate) and a request body cap, in that order.
//
// # Usage
//
//	srv := server.New(mgr, host, server.DefaultConfig())
//	go srv.Start()
//	defer srv.Shutdown(ctx)
package server
