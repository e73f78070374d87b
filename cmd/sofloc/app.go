// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/sofloc/sofloc/internal/config"
	"github.com/sofloc/sofloc/internal/storage"
	"github.com/sofloc/sofloc/pkg/solution"
)

type (
	// App wires CLI services and shared dependencies. It is the composition root for
	// the CLI layer: every Cobra command handler receives an App reference and
	// reaches configuration and archive storage through it.
	App struct {
		Config   ConfigProvider
		Archives ArchiveStore
		stdout   io.Writer
		stderr   io.Writer

		// Set from persistent flags.
		verbose    bool
		configPath string

		// Resolved before each command runs.
		cfg          *config.Config
		configSource string
		configErr    error
		logger       *log.Logger
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Archives ArchiveStore
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		LoadWithSource(ctx context.Context, opts config.LoadOptions) (*config.Config, string, error)
	}

	// ArchiveStore reads source archives and writes rewritten ones.
	ArchiveStore interface {
		Read(ctx context.Context, location string) ([]byte, error)
		Exists(ctx context.Context, location string) (bool, error)
		Write(ctx context.Context, location string, data []byte, overwrite bool) error
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Archives == nil {
		deps.Archives = storage.New()
	}

	return &App{
		Config:   deps.Config,
		Archives: deps.Archives,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
		cfg:      config.DefaultConfig(),
		logger:   newLogger(deps.Stderr, config.LogLevelInfo, false),
	}, nil
}

// initialize loads the configuration and applies it to the App. A broken
// config file is reported as a warning and the defaults are used instead.
func (a *App) initialize(ctx context.Context) {
	cfg, source, err := a.Config.LoadWithSource(ctx, config.LoadOptions{ConfigFilePath: a.configPath})
	if err != nil {
		a.configErr = err
		fmt.Fprintln(a.stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, a.verbose))
		cfg = config.DefaultConfig()
	}
	a.cfg = cfg
	a.configSource = source

	if !a.verbose {
		a.verbose = cfg.UI.Verbose
	}
	applyColorScheme(cfg.UI.ColorScheme)
	a.logger = newLogger(a.stderr, cfg.Log.Level, a.verbose)
}

// solutionOptions returns the model options derived from the configuration.
func (a *App) solutionOptions() []solution.Option {
	return []solution.Option{
		solution.WithLogger(a.logger),
		solution.WithCompressionLevel(a.cfg.CompressionLevel),
	}
}

// glamourStyle maps the configured color scheme to a glamour style name.
func (a *App) glamourStyle() string {
	switch a.cfg.UI.ColorScheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

func newLogger(w io.Writer, level config.LogLevel, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Prefix:          config.AppName,
		ReportTimestamp: false,
	})

	lvl, err := log.ParseLevel(strings.ToLower(string(level)))
	if err != nil {
		lvl = log.InfoLevel
	}
	if verbose {
		lvl = log.DebugLevel
	}
	logger.SetLevel(lvl)
	return logger
}

func applyColorScheme(scheme config.ColorScheme) {
	switch scheme {
	case config.ColorSchemeDark:
		lipgloss.SetHasDarkBackground(true)
	case config.ColorSchemeLight:
		lipgloss.SetHasDarkBackground(false)
	}
}
