// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/hrefhelper/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
	}
	cmd.AddCommand(
		newConfigShowCmd(app),
		newConfigInitCmd(app),
		newConfigPathCmd(app),
		newConfigGetCmd(app),
	)
	return cmd
}

func newConfigShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if app.jsonMode {
				return NewJSONResponse("config show", app.cfg).Print(out)
			}
			return config.EncodeTOML(out, app.cfg)
		},
	}
}

func newConfigInitCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a default configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfig: configOptional},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := config.Default()
			var err error
			if strings.HasSuffix(strings.ToLower(path), ".json") {
				err = config.SaveJSON(cfg, path)
			} else {
				err = config.SaveTOML(cfg, path)
			}
			if err != nil {
				return err
			}
			printOK(cmd.OutOrStdout(), "wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:         "path",
		Short:       "Print the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfig: configOptional},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.configPath
			if path == "" {
				var err error
				if path, err = config.ConfigPathTOML(); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Long: "Print one configuration value by dot-separated key.\n\nKeys:\n  " +
			strings.Join(config.GetAllKeys(), "\n  "),
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return config.GetAllKeys(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := app.cfg.Get(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if app.jsonMode {
				return NewJSONResponse("config get", map[string]interface{}{args[0]: value}).Print(out)
			}
			switch v := value.(type) {
			case []string:
				fmt.Fprintln(out, strings.Join(v, "\n"))
			case string, int, int64, float64, bool:
				fmt.Fprintln(out, v)
			default:
				data, err := json.Marshal(v)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			}
			return nil
		},
	}
}
