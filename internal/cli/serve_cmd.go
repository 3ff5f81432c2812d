// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/server"
)

// shutdownTimeout bounds how long in-flight requests may take after a signal.
const shutdownTimeout = 10 * time.Second

func newServeCmd(app *App) *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve completions over HTTP for editor plugins",
		Long: `Index every root, then serve the completion API until interrupted.

Examples:
  hrefhelper serve
  hrefhelper serve --root ./site --port 9000`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			mgr, rootSet, err := app.newSession(ctx, true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			scfg := server.Config{
				Host:         app.cfg.Server.Host,
				Port:         app.cfg.Server.Port,
				RateLimit:    app.cfg.Server.RateLimit,
				RateBurst:    app.cfg.Server.RateBurst,
				MaxBodyBytes: app.cfg.Server.MaxBodyBytes,
				Logger:       app.logger,
			}
			if cmd.Flags().Changed("host") {
				scfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				scfg.Port = port
			}

			srv := server.New(mgr, rootSet, scfg)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			out := cmd.OutOrStdout()
			printOK(out, "serving %d root(s) on http://%s", len(rootSet.OpenRoots()), srv.Addr())

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			printOK(out, "server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 8765, "Listen port (overrides config)")
	return cmd
}
