// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for hrefhelper.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - IndexConfig: href prefix, skipped directories, reindex timeout
//   - ServerConfig: listen address, rate limiting, body cap
//   - TasksConfig: background reindex concurrency and history
//   - UIConfig: picker theme and preview size
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (HREFHELPER_*)
//   - ~/.hrefhelper/config.toml
//   - ~/.hrefhelper/config.json
//   - Built-in defaults
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	prefix := cfg.Index.HrefPrefix
package config
