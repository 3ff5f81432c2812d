// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/config"
	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/server"
	"github.com/jeranaias/hrefhelper/internal/session"
)

// Commands annotated with annotationConfig=configOptional run even when the
// configuration file is missing or invalid.
const (
	annotationConfig = "config"
	configOptional   = "optional"
)

// App holds global flag values and the state derived from them.
type App struct {
	configPath string
	roots      []string
	verbose    bool
	jsonMode   bool
	noColor    bool

	cfg    *config.Config
	logger *log.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:   "hrefhelper",
		Short: "Path completions for href attributes",
		Long: `hrefhelper indexes the files under your project folders and offers
them as completions for href attributes.

Examples:
  # Index the current directory and list everything
  hrefhelper complete

  # Complete against two roots
  hrefhelper complete site --root ./public --root ./docs

  # Serve completions to an editor plugin
  hrefhelper serve --port 8765

  # Pick a file interactively and print its href
  hrefhelper pick`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&app.configPath, "config", "",
		"Path to config file (default ~/.hrefhelper/config.toml)")
	cmd.PersistentFlags().StringArrayVarP(&app.roots, "root", "r", nil,
		"Root folder to index (repeatable)")
	cmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false,
		"Log indexing activity to stderr")
	cmd.PersistentFlags().BoolVar(&app.jsonMode, "json", false,
		"Output in JSON format")
	cmd.PersistentFlags().BoolVar(&app.noColor, "no-color", false,
		"Disable colored output")

	cmd.AddCommand(
		newIndexCmd(app),
		newCompleteCmd(app),
		newKnownCmd(app),
		newActivateCmd(app),
		newServeCmd(app),
		newShellCmd(app),
		newPickCmd(app),
		newExportCmd(app),
		newConfigCmd(app),
		newVersionCmd(app),
	)
	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		printErr(cmd.ErrOrStderr(), "%v", err)
		return 1
	}
	return 0
}

// setup loads configuration and prepares logging and colors.
func (a *App) setup(cmd *cobra.Command) error {
	if a.noColor || !ColorsEnabled() {
		color.NoColor = true
	}

	var (
		cfg *config.Config
		err error
	)
	if a.configPath != "" {
		cfg, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if cmd.Annotations[annotationConfig] != configOptional {
			return err
		}
		cfg = config.Default()
	}
	a.cfg = cfg
	server.Version = Version

	a.logger = log.New(io.Discard, "", 0)
	if a.verbose {
		a.logger = log.New(cmd.ErrOrStderr(), "[hrefhelper] ", log.LstdFlags)
	}
	return nil
}

// resolveRoots returns the roots to work on: flags, then config, then the
// working directory.
func (a *App) resolveRoots() ([]string, error) {
	if len(a.roots) > 0 {
		return a.roots, nil
	}
	if len(a.cfg.Roots) > 0 {
		return a.cfg.Roots, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("determine working directory: %w", err)
	}
	return []string{wd}, nil
}

// sessionConfig translates the loaded configuration into session options.
func (a *App) sessionConfig() session.Config {
	scfg := session.DefaultConfig()
	scfg.Index.Walker = index.NewFSWalker(a.cfg.Index.SkipDirs...)
	scfg.Index.HrefPrefix = a.cfg.Index.HrefPrefix
	scfg.Index.Logger = a.logger
	scfg.ReindexTimeout = time.Duration(a.cfg.Index.ReindexTimeoutSecs) * time.Second
	scfg.MaxConcurrent = a.cfg.Tasks.MaxConcurrent
	scfg.MaxHistory = a.cfg.Tasks.MaxHistory
	scfg.MaxQueue = a.cfg.Tasks.MaxQueue
	scfg.Logger = a.logger
	return scfg
}

// newSession creates a manager over the resolved roots. With start set, every
// root is indexed before returning.
func (a *App) newSession(ctx context.Context, start bool) (*session.Manager, *session.RootSet, error) {
	roots, err := a.resolveRoots()
	if err != nil {
		return nil, nil, err
	}
	host := session.NewRootSet(roots...)
	mgr := session.NewManager(host, a.sessionConfig())
	if start {
		if err := mgr.Start(ctx); err != nil {
			mgr.Close()
			return nil, nil, err
		}
	}
	return mgr, host, nil
}
