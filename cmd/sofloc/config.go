// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sofloc/sofloc/internal/config"
	"github.com/sofloc/sofloc/internal/issue"
)

// newConfigCommand creates the `sofloc config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage sofloc configuration",
		Long: `Manage sofloc configuration.

Configuration is stored in:
  - Linux: ~/.config/sofloc/config.cue
  - macOS: ~/Library/Application Support/sofloc/config.cue
  - Windows: %APPDATA%\sofloc\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(app)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, created, err := config.CreateDefaultConfig()
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(app.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
				return nil
			}
			fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			cfgPath, err := config.ConfigFilePath()
			if err != nil {
				return err
			}
			fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
			fmt.Fprintf(app.stdout, "Config file: %s\n", cfgPath)
			return nil
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func showConfig(app *App) error {
	if app.configErr != nil {
		rendered, _ := issue.Get(issue.ConfigLoadFailedId).Render(app.glamourStyle())
		fmt.Fprint(app.stderr, rendered)
		return app.configErr
	}

	cfg := app.cfg
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(app.stdout, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(app.stdout)

	if app.configSource != "" {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), app.configSource)
	} else {
		fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(app.stdout)

	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("output_dir"), valueStyle.Render(cfg.OutputDir))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("overwrite"), valueStyle.Render(strconv.FormatBool(cfg.Overwrite)))
	fmt.Fprintf(app.stdout, "%s: %s\n", keyStyle.Render("compression_level"), valueStyle.Render(strconv.Itoa(cfg.CompressionLevel)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, keyStyle.Render("log:"))
	fmt.Fprintf(app.stdout, "  level: %s\n", valueStyle.Render(cfg.Log.Level.String()))

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, keyStyle.Render("ui:"))
	fmt.Fprintf(app.stdout, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(app.stdout, "  verbose: %s\n", valueStyle.Render(strconv.FormatBool(cfg.UI.Verbose)))

	fmt.Fprintln(app.stdout)
	fmt.Fprintln(app.stdout, keyStyle.Render("diff:"))
	fmt.Fprintf(app.stdout, "  max_lines: %s\n", valueStyle.Render(strconv.Itoa(cfg.Diff.MaxLines)))
	fmt.Fprintf(app.stdout, "  context: %s\n", valueStyle.Render(strconv.Itoa(cfg.Diff.Context)))

	return nil
}
