// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/session"
)

// =============================================================================
// INDEX
// =============================================================================

// IndexData is the --json payload of the index command.
type IndexData struct {
	Results []index.Result `json:"results"`
	Stats   index.Stats    `json:"stats"`
}

func newIndexCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Index every root and print a summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			return OutputJSON(out, app.jsonMode, "index", func() (interface{}, error) {
				results, err := mgr.ReindexAll(cmd.Context())
				data := IndexData{Results: results, Stats: mgr.Index().Stats()}
				if !app.jsonMode {
					for _, res := range results {
						printOK(out, "%s", res)
					}
					if err != nil {
						printErr(out, "%v", err)
					}
					fmt.Fprintf(out, "%d files known, %d completions\n", data.Stats.KnownPaths, data.Stats.Records)
				}
				return data, err
			})
		},
	}
}

// =============================================================================
// COMPLETE
// =============================================================================

func newCompleteCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "complete [prefix]",
		Short: "Print completions matching prefix",
		Long: `Print completions whose trigger starts with or contains prefix,
case-insensitively. Prefix matches are listed first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := ""
			if len(args) == 1 {
				prefix = args[0]
			}

			mgr, _, err := app.newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			return OutputJSON(out, app.jsonMode, "complete", func() (interface{}, error) {
				records := mgr.QueryCompletions(prefix, limit)
				if records == nil {
					records = []index.CompletionRecord{}
				}
				if !app.jsonMode {
					writeRecords(out, records)
				}
				return records, nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of completions (0 = all)")
	return cmd
}

// writeRecords prints records as an aligned trigger/href table.
func writeRecords(w io.Writer, records []index.CompletionRecord) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, rec := range records {
		fmt.Fprintf(tw, "%s\t%s\n", rec.Trigger, rec.Annotation)
	}
	tw.Flush()
}

// =============================================================================
// KNOWN
// =============================================================================

// KnownData is the --json payload of the known command.
type KnownData struct {
	Path  string `json:"path"`
	Known bool   `json:"known"`
	Root  string `json:"root,omitempty"`
}

// KnownListData is the --json payload of known without a path.
type KnownListData struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
}

func newKnownCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "known [path]",
		Short: "Report whether a file is indexed, or list every known file",
		Long: `With a path, report whether that file is indexed and which open root
holds it. Without one, list every known file, hidden files included.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, _, err := app.newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				return OutputJSON(out, app.jsonMode, "known", func() (interface{}, error) {
					paths := mgr.Index().KnownPaths()
					if !app.jsonMode {
						for _, p := range paths {
							fmt.Fprintln(out, p)
						}
					}
					return KnownListData{Paths: paths, Count: len(paths)}, nil
				})
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			return OutputJSON(out, app.jsonMode, "known", func() (interface{}, error) {
				data := KnownData{Path: path, Known: mgr.Index().IsKnown(path)}
				if root, err := mgr.ContainingRoot(path); err == nil {
					data.Root = root
				}
				if !app.jsonMode {
					switch {
					case data.Known:
						printOK(out, "%s is indexed", path)
					case data.Root == "":
						printWarn(out, "%s is outside every root", path)
					default:
						printWarn(out, "%s is not indexed", path)
					}
				}
				return data, nil
			})
		},
	}
}

// =============================================================================
// ACTIVATE
// =============================================================================

// ActivateData is the --json payload of the activate command.
type ActivateData struct {
	Path    string `json:"path"`
	Added   bool   `json:"added"`
	Known   bool   `json:"known"`
	Records int    `json:"records"`
}

func newActivateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <path>",
		Short: "Handle a file being focused, as the editor would",
		Long: `Handle a file being focused, as the editor would. Roots are not
indexed up front: activating a file in an unindexed root indexes that whole
root, otherwise only the file itself is added.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			mgr, host, err := app.newSession(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer mgr.Close()

			out := cmd.OutOrStdout()
			return OutputJSON(out, app.jsonMode, "activate", func() (interface{}, error) {
				host.SetActive(path)
				added, err := mgr.SyncActive(cmd.Context())
				data := ActivateData{
					Path:    path,
					Added:   added,
					Known:   mgr.Index().IsKnown(path),
					Records: mgr.Index().Stats().Records,
				}
				if err != nil {
					return data, err
				}
				if !app.jsonMode {
					printActivation(out, mgr, data)
				}
				return data, nil
			})
		},
	}
}

func printActivation(w io.Writer, mgr *session.Manager, data ActivateData) {
	switch {
	case data.Added:
		printOK(w, "added %s (%d completions)", data.Path, data.Records)
	case data.Known:
		printOK(w, "%s already known", data.Path)
	default:
		if _, err := mgr.ContainingRoot(data.Path); err != nil {
			printWarn(w, "%s is outside every root", data.Path)
			return
		}
		printWarn(w, "%s was not added", data.Path)
	}
}
