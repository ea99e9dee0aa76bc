// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/internal/config"
)

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect alfine configuration",
		Long: `Inspect alfine configuration.

Configuration is read from --config, else config.cue in the user config
directory, else config.cue in the working directory. Environment variables
prefixed with ALFINE_ override file values.`,
	}
	cmd.AddCommand(newConfigShowCommand(app), newConfigPathCommand(app), newConfigInitCommand(app))
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			switch format {
			case "cue":
				app.printf("%s", config.GenerateCUE(cfg))
			case "toml":
				data, err := cfg.TOML()
				if err != nil {
					return err
				}
				app.printf("%s", data)
			default:
				return fmt.Errorf("unknown format %q (want cue or toml)", format)
			}
			return nil
		}),
	}
	cmd.Flags().StringVar(&format, "format", "cue", "output format: cue or toml")
	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show which config file is used",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(_ *cobra.Command, _ []string) error {
			path, err := config.FindConfigFile(config.LoadOptions{ConfigFilePath: app.flags.configPath})
			if err != nil {
				return err
			}
			if path == "" {
				app.printf("%s\n", VerboseStyle.Render("no config file, using defaults"))
				return nil
			}
			app.printf("%s\n", path)
			return nil
		}),
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file to the user config directory",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(_ *cobra.Command, _ []string) error {
			path := app.flags.configPath
			if path == "" {
				dir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(dir, config.ConfigFileName+"."+config.ConfigFileExt)
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			app.printf("%s %s\n", SuccessStyle.Render("✓"), path)
			return nil
		}),
	}
}
