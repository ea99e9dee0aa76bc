// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/alfine/alfine/internal/config"
	"github.com/alfine/alfine/internal/issue"
	"github.com/alfine/alfine/pkg/ivycache"
	"github.com/alfine/alfine/pkg/overrides"
)

type (
	// OracleFactory builds the resolution oracle from the effective
	// configuration. A nil oracle makes the cache purely in-memory.
	OracleFactory func(cfg *config.Config, logger *log.Logger) (ivycache.Oracle, error)

	// App wires CLI services and shared dependencies for one invocation.
	App struct {
		Config config.Provider
		Oracle OracleFactory
		stdout io.Writer
		stderr io.Writer
		flags  globalFlags
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config config.Provider
		Oracle OracleFactory
		Stdout io.Writer
		Stderr io.Writer
	}

	globalFlags struct {
		configPath string
		verbose    bool
		cacheDir   string
		overrides  string
	}

	// session is the per-command state derived from configuration.
	session struct {
		cfg    *config.Config
		logger *log.Logger
		store  *overrides.Store
		cache  *ivycache.Cache
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Oracle == nil {
		deps.Oracle = execOracle
	}
	return &App{
		Config: deps.Config,
		Oracle: deps.Oracle,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// execOracle runs the configured Ivy command line.
func execOracle(cfg *config.Config, logger *log.Logger) (ivycache.Oracle, error) {
	timeout, err := cfg.OracleTimeout()
	if err != nil {
		return nil, err
	}
	o, err := ivycache.NewExecOracle(cfg.Oracle.Command, cfg.CacheDir,
		ivycache.WithTypes(cfg.Oracle.Types...),
		ivycache.WithTimeout(timeout),
		ivycache.WithOracleLogger(logger),
	)
	if err != nil {
		return nil, err
	}
	return o, nil
}

// loadConfig loads configuration and applies the global flag overrides.
func (a *App) loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := a.Config.Load(ctx, config.LoadOptions{ConfigFilePath: a.flags.configPath})
	if err != nil {
		return nil, err
	}
	if a.flags.cacheDir != "" {
		cfg.CacheDir = a.flags.cacheDir
	}
	if a.flags.overrides != "" {
		cfg.OverridesFile = a.flags.overrides
	}
	return cfg, nil
}

func (a *App) newLogger(cfg *config.Config) *log.Logger {
	level, err := cfg.Level()
	if err != nil {
		level = log.InfoLevel
	}
	if a.flags.verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(a.stderr, log.Options{
		Level:  level,
		Prefix: "alfine",
	})
}

// newSession builds the resolution stack for one command.
func (a *App) newSession(ctx context.Context) (*session, error) {
	cfg, err := a.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger := a.newLogger(cfg)

	store := overrides.NewStore(overrides.WithDir(cfg.OverrideDir))
	if cfg.OverridesFile != "" {
		loaded, err := overrides.LoadFile(cfg.OverridesFile)
		if err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load overrides").
				WithResource(cfg.OverridesFile).
				WithSuggestion("Check the declarations against the overrides schema").
				Wrap(err).
				BuildError()
		}
		if err := overrides.Apply(store, loaded); err != nil {
			return nil, issue.WrapWithContext(err, "install overrides", store.Dir())
		}
		logger.Debug("loaded overrides", "file", cfg.OverridesFile, "modules", len(loaded))
	}

	oracle, err := a.Oracle(cfg, logger)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("configure oracle").
			WithResource(cfg.Oracle.Command).
			WithSuggestion("Check the oracle.command setting with 'alfine config show'").
			Wrap(err).
			BuildError()
	}

	opts := []ivycache.Option{
		ivycache.WithOverrides(store),
		ivycache.WithLogger(logger),
		ivycache.WithLocalBuildDir(cfg.LocalBuildDir),
	}
	if oracle != nil {
		opts = append(opts, ivycache.WithOracle(oracle))
	}

	return &session{
		cfg:    cfg,
		logger: logger,
		store:  store,
		cache:  ivycache.New(opts...),
	}, nil
}

func (a *App) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(a.stdout, format, args...)
}
