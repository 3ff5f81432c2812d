// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/config"
	"github.com/jeranaias/hrefhelper/internal/index"
	"github.com/jeranaias/hrefhelper/internal/session"
)

// shellCompletionLimit caps tab-completion candidates.
const shellCompletionLimit = 50

func newShellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive completion shell",
		Long: `Index every root and start an interactive shell. Type a prefix to
list completions; Tab completes triggers. Commands start with ':' (try :help).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, host, err := app.newSession(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer mgr.Close()

			sh := NewShell(mgr, host)
			return sh.Run(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// SHELL
// =============================================================================

// Shell is a line-oriented front end to a session. Exec and Complete hold
// all the logic; Run only adds line editing and history.
type Shell struct {
	mgr  *session.Manager
	host *session.RootSet
}

// shellCommands are the ':' commands, for help and tab completion.
var shellCommands = map[string]string{
	":activate": "activate <path>  handle a file being focused",
	":help":     "help             show this help",
	":known":    "known <path>     report whether a file is indexed",
	":open":     "open <dir>       add a root and index it",
	":quit":     "quit             leave the shell",
	":reindex":  "reindex [root]   walk one root, or all of them",
	":roots":    "roots            list open roots",
	":stats":    "stats            show index statistics",
}

// NewShell creates a shell over a session.
func NewShell(mgr *session.Manager, host *session.RootSet) *Shell {
	return &Shell{mgr: mgr, host: host}
}

// Run reads lines until EOF, Ctrl+C or :quit.
func (s *Shell) Run(ctx context.Context, w io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(s.Complete)

	historyFile := ""
	if dir, err := config.ConfigDir(); err == nil {
		historyFile = filepath.Join(dir, "shell_history")
		if f, err := os.Open(historyFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintln(w, dimText("Type a prefix to list completions, :help for commands."))
	for {
		input, err := line.Prompt("href> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				break
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if s.Exec(ctx, input, w) {
			break
		}
	}

	if historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(historyFile), 0o700); err == nil {
			if f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
				line.WriteHistory(f)
				f.Close()
			}
		}
	}
	return nil
}

// Exec runs one input line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, input string, w io.Writer) (quit bool) {
	input = strings.TrimSpace(input)
	if input == "" {
		return false
	}
	if !strings.HasPrefix(input, ":") {
		records := s.mgr.QueryCompletions(input, 0)
		if len(records) == 0 {
			printWarn(w, "no completions for %q", input)
			return false
		}
		writeRecords(w, records)
		return false
	}

	fields := strings.Fields(input)
	name, args := fields[0], fields[1:]
	arg := strings.Join(args, " ")

	switch name {
	case ":quit", ":q", ":exit":
		return true

	case ":help":
		names := make([]string, 0, len(shellCommands))
		for n := range shellCommands {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(w, "  :%s\n", shellCommands[n])
		}

	case ":roots":
		for _, root := range s.host.OpenRoots() {
			state := "indexed"
			if !s.mgr.Index().IsIndexed(root) {
				state = "not indexed"
			}
			fmt.Fprintf(w, "%s  %s\n", root, dimText(state))
		}

	case ":stats":
		st := s.mgr.Index().Stats()
		fmt.Fprintf(w, "roots: %d  files: %d  completions: %d  trie nodes: %d\n",
			st.Roots, st.KnownPaths, st.Records, st.TrieNodes)

	case ":known":
		if arg == "" {
			printErr(w, "usage: :known <path>")
			return false
		}
		path, _ := filepath.Abs(arg)
		if s.mgr.Index().IsKnown(path) {
			printOK(w, "%s is indexed", path)
		} else {
			printWarn(w, "%s is not indexed", path)
		}

	case ":activate":
		if arg == "" {
			printErr(w, "usage: :activate <path>")
			return false
		}
		path, _ := filepath.Abs(arg)
		s.host.SetActive(path)
		added, err := s.mgr.SyncActive(ctx)
		if err != nil {
			printErr(w, "%v", err)
			return false
		}
		printActivation(w, s.mgr, ActivateData{
			Path:    path,
			Added:   added,
			Known:   s.mgr.Index().IsKnown(path),
			Records: s.mgr.Index().Stats().Records,
		})

	case ":open":
		if arg == "" {
			printErr(w, "usage: :open <dir>")
			return false
		}
		root, _ := filepath.Abs(arg)
		if info, err := os.Stat(root); err != nil || !info.IsDir() {
			printErr(w, "%s is not a directory", root)
			return false
		}
		s.host.Add(root)
		s.reindex(ctx, w, []string{root})

	case ":reindex":
		roots := s.host.OpenRoots()
		if arg != "" {
			root, _ := filepath.Abs(arg)
			roots = []string{root}
		}
		s.reindex(ctx, w, roots)

	default:
		printErr(w, "unknown command %s (try :help)", name)
	}
	return false
}

func (s *Shell) reindex(ctx context.Context, w io.Writer, roots []string) {
	for _, root := range roots {
		res, err := s.mgr.TriggerReindex(ctx, root)
		if err != nil {
			printErr(w, "%v", err)
			continue
		}
		printOK(w, "%s", res)
	}
}

// Complete returns tab-completion candidates for line: command names for
// ':' input, otherwise distinct triggers matching the line.
func (s *Shell) Complete(line string) []string {
	if strings.HasPrefix(line, ":") {
		var out []string
		for name := range shellCommands {
			if strings.HasPrefix(name, line) {
				out = append(out, name+" ")
			}
		}
		sort.Strings(out)
		return out
	}
	return index.Triggers(s.mgr.QueryCompletions(line, shellCompletionLimit))
}
