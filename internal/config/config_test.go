// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every override for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"HREFHELPER_ROOTS", "HREFHELPER_HREF_PREFIX", "HREFHELPER_SKIP_DIRS", "HREFHELPER_PORT"} {
		t.Setenv(k, "")
	}
}

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "/", cfg.Index.HrefPrefix)
	assert.Empty(t, cfg.Index.SkipDirs, ".git must still be walked by default")
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 1, cfg.Tasks.MaxConcurrent)
	assert.Zero(t, cfg.Index.ReindexTimeoutSecs, "reindexes run to completion by default")
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"href prefix without slash", func(c *Config) { c.Index.HrefPrefix = "/static" }, "index.href_prefix"},
		{"skip dir with separator", func(c *Config) { c.Index.SkipDirs = []string{"a/b"} }, "index.skip_dirs[0]"},
		{"negative timeout", func(c *Config) { c.Index.ReindexTimeoutSecs = -1 }, "index.reindex_timeout_secs"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"zero rate", func(c *Config) { c.Server.RateLimit = 0 }, "server.rate_limit"},
		{"too many workers", func(c *Config) { c.Tasks.MaxConcurrent = 17 }, "tasks.max_concurrent"},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, "ui.theme"},
		{"empty root", func(c *Config) { c.Roots = []string{" "} }, "roots[0]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := cfg.Validate()
			require.Error(t, err)

			var verrs ValidateErrors
			require.True(t, errors.As(err, &verrs))
			require.Len(t, verrs, 1)
			assert.Equal(t, tt.field, verrs[0].Field)
		})
	}
}

func TestConfig_ValidateCollectsAll(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.UI.Theme = "neon"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
	assert.Contains(t, err.Error(), "ui.theme")
}

func TestConfig_SetDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefaults()

	assert.Equal(t, "/", cfg.Index.HrefPrefix)
	assert.Equal(t, 8765, cfg.Server.Port)
	assert.Equal(t, 1, cfg.Tasks.MaxConcurrent)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HREFHELPER_ROOTS", strings.Join([]string{"/srv/a", "/srv/b"}, string(os.PathListSeparator)))
	t.Setenv("HREFHELPER_HREF_PREFIX", "/docs/")
	t.Setenv("HREFHELPER_SKIP_DIRS", "node_modules, .cache")
	t.Setenv("HREFHELPER_PORT", "9000")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, []string{"/srv/a", "/srv/b"}, cfg.Roots)
	assert.Equal(t, "/docs/", cfg.Index.HrefPrefix)
	assert.Equal(t, []string{"node_modules", ".cache"}, cfg.Index.SkipDirs)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestConfig_EnvPortIgnoredWhenInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("HREFHELPER_PORT", "not-a-port")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, 8765, cfg.Server.Port)
}

func TestConfig_LoadTOML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
roots = ["/srv/site"]

[index]
href_prefix = "/static/"
skip_dirs = ["node_modules"]

[server]
port = 9100
`), 0o644))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/srv/site"}, cfg.Roots)
	assert.Equal(t, "/static/", cfg.Index.HrefPrefix)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host, "unset keys keep defaults")
}

func TestConfig_LoadTOMLRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[index]\nhref_prefx = \"/x/\"\n"), 0o644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "href_prefx")
}

func TestConfig_LoadInvalid(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0o644))

	_, err := LoadFromPath(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestConfig_SaveAndLoadRoundTrip(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	cfg := Default()
	cfg.Roots = []string{"/srv/site"}
	cfg.Index.SkipDirs = []string{"node_modules"}

	tomlPath := filepath.Join(dir, "config.toml")
	require.NoError(t, SaveTOML(cfg, tomlPath))
	fromTOML, err := LoadFromPath(tomlPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, fromTOML)

	data, err := os.ReadFile(tomlPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# hrefhelper configuration file"))

	jsonPath := filepath.Join(dir, "config.json")
	require.NoError(t, SaveJSON(cfg, jsonPath))
	fromJSON, err := LoadFromPath(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, cfg, fromJSON)
}

func TestConfig_LoadFallsBackToDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("USERPROFILE", os.Getenv("HOME"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestConfig_Get(t *testing.T) {
	cfg := Default()

	v, err := cfg.Get("server.port")
	require.NoError(t, err)
	assert.Equal(t, 8765, v)

	v, err = cfg.Get("index.href_prefix")
	require.NoError(t, err)
	assert.Equal(t, "/", v)

	_, err = cfg.Get("server.nope")
	assert.Error(t, err)
	_, err = cfg.Get("server.port.deeper")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestConfig_GetAllKeys(t *testing.T) {
	keys := GetAllKeys()
	assert.Contains(t, keys, "roots")
	assert.Contains(t, keys, "index.href_prefix")
	assert.Contains(t, keys, "server.max_body_bytes")
	assert.Contains(t, keys, "ui.preview_lines")

	cfg := Default()
	for _, k := range keys {
		_, err := cfg.Get(k)
		assert.NoError(t, err, k)
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := Default()
	cfg.Roots = []string{"/a"}
	clone := cfg.Clone()
	clone.Roots[0] = "/b"
	assert.Equal(t, "/a", cfg.Roots[0])
}
