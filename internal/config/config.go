// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/hrefhelper/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete hrefhelper configuration.
type Config struct {
	// Roots are the folders opened when no --root flag is given.
	Roots []string `toml:"roots" json:"roots"`

	Index  IndexConfig  `toml:"index" json:"index"`
	Server ServerConfig `toml:"server" json:"server"`
	Tasks  TasksConfig  `toml:"tasks" json:"tasks"`
	UI     UIConfig     `toml:"ui" json:"ui"`
}

// IndexConfig controls how roots are walked and how hrefs are formed.
type IndexConfig struct {
	// HrefPrefix is prepended to root-relative paths. Must end in "/".
	HrefPrefix string `toml:"href_prefix" json:"href_prefix"`
	// SkipDirs are directory names never descended into (e.g. "node_modules").
	SkipDirs []string `toml:"skip_dirs" json:"skip_dirs"`
	// ReindexTimeoutSecs bounds a single reindex (0 = no limit).
	ReindexTimeoutSecs int `toml:"reindex_timeout_secs" json:"reindex_timeout_secs"`
}

// ServerConfig contains settings for `hrefhelper serve`.
type ServerConfig struct {
	Host string `toml:"host" json:"host"`
	Port int    `toml:"port" json:"port"`
	// RateLimit is the sustained requests per second allowed per client IP.
	RateLimit float64 `toml:"rate_limit" json:"rate_limit"`
	// RateBurst is the burst size allowed per client IP.
	RateBurst int `toml:"rate_burst" json:"rate_burst"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `toml:"max_body_bytes" json:"max_body_bytes"`
}

// TasksConfig controls background reindexing.
type TasksConfig struct {
	MaxConcurrent int `toml:"max_concurrent" json:"max_concurrent"`
	MaxHistory    int `toml:"max_history" json:"max_history"`
	// MaxQueue caps queued tasks (0 = unlimited).
	MaxQueue int `toml:"max_queue" json:"max_queue"`
}

// UIConfig contains settings for the interactive picker and shell.
type UIConfig struct {
	// Theme is "dark", "light" or "auto".
	Theme string `toml:"theme" json:"theme"`
	// PreviewLines is how many lines of the selected file the picker shows.
	PreviewLines int `toml:"preview_lines" json:"preview_lines"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a configuration with all default values.
func Default() *Config {
	return &Config{
		Roots: nil,
		Index: IndexConfig{
			HrefPrefix: "/",
			SkipDirs:   nil,
			// A reindex runs to completion unless canceled.
			ReindexTimeoutSecs: 0,
		},
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8765,
			RateLimit:    20,
			RateBurst:    40,
			MaxBodyBytes: 64 * 1024,
		},
		Tasks: TasksConfig{
			MaxConcurrent: 1,
			MaxHistory:    50,
			MaxQueue:      100,
		},
		UI: UIConfig{
			Theme:        "auto",
			PreviewLines: 20,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the hrefhelper configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".hrefhelper"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	for _, pathFn := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := pathFn()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr == nil {
			return LoadFromPath(path)
		}
	}

	cfg := Default()
	return cfg, finish(cfg)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Files ending in .json are read as JSON, anything else as TOML.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(strings.ToLower(path), ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	if err := finish(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish applies env overrides and defaults, then validates.
func finish(cfg *Config) error {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func LoadTOML(cfg *Config, path string) error {
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file atomically.
func SaveTOML(cfg *Config, path string) error {
	err := util.AtomicWrite(path, 0644, func(w io.Writer) error {
		return EncodeTOML(w, cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// EncodeTOML writes cfg as TOML with a short header.
func EncodeTOML(w io.Writer, cfg *Config) error {
	fmt.Fprintln(w, "# hrefhelper configuration file")
	fmt.Fprintln(w, "# Generated by hrefhelper - edit with care")
	fmt.Fprintln(w, "")

	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration to a JSON file atomically.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors as
// ValidateErrors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...interface{}) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	for i, root := range c.Roots {
		if strings.TrimSpace(root) == "" {
			add(fmt.Sprintf("roots[%d]", i), "must not be empty")
		}
	}

	// Index
	if !strings.HasSuffix(c.Index.HrefPrefix, "/") {
		add("index.href_prefix", "'%s' must end with '/'", c.Index.HrefPrefix)
	}
	for i, dir := range c.Index.SkipDirs {
		if dir == "" || strings.ContainsAny(dir, `/\`) {
			add(fmt.Sprintf("index.skip_dirs[%d]", i), "'%s' must be a bare directory name", dir)
		}
	}
	if c.Index.ReindexTimeoutSecs < 0 {
		add("index.reindex_timeout_secs", "must not be negative, got %d", c.Index.ReindexTimeoutSecs)
	}

	// Server
	if c.Server.Host == "" {
		add("server.host", "must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		add("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit <= 0 {
		add("server.rate_limit", "must be positive, got %g", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		add("server.rate_burst", "must be at least 1, got %d", c.Server.RateBurst)
	}
	if c.Server.MaxBodyBytes < 1 {
		add("server.max_body_bytes", "must be at least 1, got %d", c.Server.MaxBodyBytes)
	}

	// Tasks
	if c.Tasks.MaxConcurrent < 1 || c.Tasks.MaxConcurrent > 16 {
		add("tasks.max_concurrent", "must be between 1 and 16, got %d", c.Tasks.MaxConcurrent)
	}
	if c.Tasks.MaxHistory < 0 {
		add("tasks.max_history", "must not be negative, got %d", c.Tasks.MaxHistory)
	}
	if c.Tasks.MaxQueue < 0 {
		add("tasks.max_queue", "must not be negative, got %d", c.Tasks.MaxQueue)
	}

	// UI
	switch strings.ToLower(c.UI.Theme) {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme)
	}
	if c.UI.PreviewLines < 0 || c.UI.PreviewLines > 500 {
		add("ui.preview_lines", "must be between 0 and 500, got %d", c.UI.PreviewLines)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields. Fields where zero is meaningful are left alone.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Index.HrefPrefix == "" {
		c.Index.HrefPrefix = defaults.Index.HrefPrefix
	}

	if c.Server.Host == "" {
		c.Server.Host = defaults.Server.Host
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaults.Server.Port
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = defaults.Server.RateLimit
	}
	if c.Server.RateBurst == 0 {
		c.Server.RateBurst = defaults.Server.RateBurst
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = defaults.Server.MaxBodyBytes
	}

	if c.Tasks.MaxConcurrent == 0 {
		c.Tasks.MaxConcurrent = defaults.Tasks.MaxConcurrent
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - HREFHELPER_ROOTS: replaces roots (OS path-list separated)
//   - HREFHELPER_HREF_PREFIX: overrides index.href_prefix
//   - HREFHELPER_SKIP_DIRS: replaces index.skip_dirs (comma separated)
//   - HREFHELPER_PORT: overrides server.port (ignored if not a number)
func (c *Config) ApplyEnvOverrides() {
	if roots := os.Getenv("HREFHELPER_ROOTS"); roots != "" {
		c.Roots = nil
		for _, r := range filepath.SplitList(roots) {
			if r = strings.TrimSpace(r); r != "" {
				c.Roots = append(c.Roots, r)
			}
		}
	}

	if prefix := os.Getenv("HREFHELPER_HREF_PREFIX"); prefix != "" {
		c.Index.HrefPrefix = prefix
	}

	if skip := os.Getenv("HREFHELPER_SKIP_DIRS"); skip != "" {
		c.Index.SkipDirs = nil
		for _, d := range strings.Split(skip, ",") {
			if d = strings.TrimSpace(d); d != "" {
				c.Index.SkipDirs = append(c.Index.SkipDirs, d)
			}
		}
	}

	if port := os.Getenv("HREFHELPER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
}

// =============================================================================
// GET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "server.port").
// Keys are the TOML names.
func (c *Config) Get(key string) (interface{}, error) {
	if key == "" {
		return nil, errors.New("empty key")
	}

	current := reflect.ValueOf(c).Elem()
	for _, part := range strings.Split(key, ".") {
		if current.Kind() != reflect.Struct {
			return nil, fmt.Errorf("key %q: %q is not a section", key, part)
		}
		field, ok := fieldByTag(current, part)
		if !ok {
			return nil, fmt.Errorf("unknown config key: %s", key)
		}
		current = field
	}
	return current.Interface(), nil
}

// fieldByTag finds the struct field whose toml tag is name.
func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// GetAllKeys returns all valid configuration keys in dot notation.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := strings.Split(f.Tag.Get("toml"), ",")[0]
			if tag == "" || tag == "-" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+tag+".")
				continue
			}
			keys = append(keys, prefix+tag)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// =============================================================================
// HELPERS
// =============================================================================

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Roots = append([]string(nil), c.Roots...)
	clone.Index.SkipDirs = append([]string(nil), c.Index.SkipDirs...)
	return &clone
}

// String returns the configuration as indented JSON for debugging.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
