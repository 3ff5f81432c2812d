// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/ui/picker"
	"github.com/jeranaias/hrefhelper/internal/ui/styles"
)

// ErrNotTerminal is returned by interactive commands run without a terminal.
var ErrNotTerminal = errors.New("not a terminal")

func newPickCmd(app *App) *cobra.Command {
	var (
		query     string
		trigger   bool
		noPreview bool
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Pick a file interactively and print its href",
		Long: `Open a full-screen picker over every completion. The chosen href is
printed to stdout, so the command composes with editors and shell scripts:

  hrefhelper pick --query logo | pbcopy`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !IsTTY() || !IsStderrTTY() {
				return fmt.Errorf("pick: %w (use 'complete' in scripts)", ErrNotTerminal)
			}

			mgr, host, err := app.newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			theme := styles.NewTheme(app.cfg.UI.Theme)
			theme.ColorProfile = GetColorProfile()
			theme.SetSize(GetTerminalSize())

			opts := picker.Options{
				Theme:        theme,
				Query:        query,
				PreviewLines: app.cfg.UI.PreviewLines,
				Locate:       picker.RootLocator(host.OpenRoots(), app.cfg.Index.HrefPrefix),
				Output:       cmd.ErrOrStderr(),
			}
			if noPreview || app.cfg.UI.PreviewLines == 0 {
				opts.PreviewLines = -1
			}

			rec, ok, err := picker.Run(mgr.Index().Completions(), opts)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			if trigger {
				fmt.Fprintln(cmd.OutOrStdout(), rec.Trigger)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), rec.Annotation)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "Initial filter text")
	cmd.Flags().BoolVar(&trigger, "trigger", false, "Print the trigger instead of the href")
	cmd.Flags().BoolVar(&noPreview, "no-preview", false, "Disable the file preview pane")
	return cmd
}
