// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/export"
)

func newExportCmd(app *App) *cobra.Command {
	var (
		format string
		output string
		dir    string
		render bool
		open   bool
		theme  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export completions to a file or stdout",
		Long: fmt.Sprintf(`Index every root and export the completions.

Formats: %s

Examples:
  # Editor completions file
  hrefhelper export --format completions --output hrefs.sublime-completions

  # Browse the table in the terminal
  hrefhelper export --format markdown --render

  # Timestamped HTML report in ./reports, opened in the browser
  hrefhelper export --format html --dir reports --open`, strings.Join(export.Formats(), ", ")),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := export.DefaultOptions()
			opts.OpenAfterExport = open
			if theme != "" {
				opts.Theme = theme
			}
			if dir != "" {
				opts.OutputDir = dir
			}

			exporter, err := export.New(format, opts)
			if err != nil {
				return err
			}

			mgr, host, err := app.newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			doc := export.NewDocument(host.OpenRoots(), mgr.Index().Completions())
			out := cmd.OutOrStdout()

			switch {
			case render:
				if _, ok := exporter.(*export.MarkdownExporter); !ok {
					return fmt.Errorf("--render needs --format markdown")
				}
				var buf bytes.Buffer
				if err := export.Write(&buf, doc, exporter); err != nil {
					return err
				}
				rendered, err := export.RenderMarkdown(buf.Bytes(), GetTerminalWidth(), app.cfg.UI.Theme)
				if err != nil {
					return err
				}
				fmt.Fprint(out, rendered)
				return nil

			case output == "-" || (output == "" && dir == ""):
				return export.Write(out, doc, exporter)

			case output != "":
				if err := export.WriteFile(output, doc, exporter); err != nil {
					return err
				}
				printOK(cmd.ErrOrStderr(), "wrote %d completions to %s", len(doc.Records), output)
				return nil

			default:
				path, err := export.ExportToFile(doc, exporter, opts)
				if path == "" {
					return err
				}
				printOK(cmd.ErrOrStderr(), "wrote %d completions to %s", len(doc.Records), path)
				if err != nil {
					printWarn(cmd.ErrOrStderr(), "%v", err)
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", export.FormatJSON, "Export format")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file ('-' for stdout)")
	cmd.Flags().StringVar(&dir, "dir", "", "Write a timestamped file into this directory")
	cmd.Flags().BoolVar(&render, "render", false, "Render markdown in the terminal")
	cmd.Flags().BoolVar(&open, "open", false, "Open the written file")
	cmd.Flags().StringVar(&theme, "theme", "", "HTML theme (dark or light)")
	return cmd
}
