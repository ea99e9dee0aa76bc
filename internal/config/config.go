// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/spf13/viper"

	"github.com/alfine/alfine/internal/issue"
	"github.com/alfine/alfine/pkg/cueutil"
)

const (
	// AppName is the application name.
	AppName = "alfine"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "ALFINE"
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the alfine directory under the user configuration
// directory ($XDG_CONFIG_HOME or ~/.config on Linux).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, AppName), nil
}

// FindConfigFile returns the config file that Load would read, or "" when
// none exists and defaults apply.
func FindConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'alfine config show' to see the default configuration").
				Wrap(fmt.Errorf("config file not found: %w", os.ErrNotExist)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir := opts.ConfigDirPath
	if cfgDir == "" {
		dir, err := ConfigDir()
		if err != nil {
			return "", err
		}
		cfgDir = dir
	}
	name := ConfigFileName + "." + ConfigFileExt
	for _, candidate := range []string{filepath.Join(cfgDir, name), filepath.Join(opts.BaseDir, name)} {
		if fileExists(candidate) {
			return candidate, nil
		}
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading and returns the
// effective configuration with the file it came from.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}
	if err := opts.Validate(); err != nil {
		return nil, "", err
	}

	v := viper.New()
	defaults := DefaultConfig()
	v.SetDefault("cache_dir", defaults.CacheDir)
	v.SetDefault("override_dir", defaults.OverrideDir)
	v.SetDefault("local_build_dir", defaults.LocalBuildDir)
	v.SetDefault("overrides_file", defaults.OverridesFile)
	v.SetDefault("oracle.command", defaults.Oracle.Command)
	v.SetDefault("oracle.types", defaults.Oracle.Types)
	v.SetDefault("oracle.timeout", defaults.Oracle.Timeout)
	v.SetDefault("trace.verbose", defaults.Trace.Verbose)
	v.SetDefault("trace.strict", defaults.Trace.Strict)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, err := FindConfigFile(opts)
	if err != nil {
		return nil, "", err
	}
	if path != "" {
		if err := loadCUEIntoViper(v, path); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(path).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("See 'alfine config --help' for configuration options").
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(path).
			WithSuggestion("Check ALFINE_* environment variables for empty or malformed values").
			Wrap(err).
			BuildError()
	}
	return &cfg, path, nil
}

// loadCUEIntoViper validates a CUE file against #Config and merges it into v.
// Fields are optional, so the value is decoded to a map instead of through
// cueutil.ParseAndDecode.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()
	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	unified := schemaValue.LookupPath(cue.ParsePath("#Config")).Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil && !info.IsDir()
}

// GenerateCUE renders cfg as a config.cue document.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// alfine configuration\n\n")
	fmt.Fprintf(&sb, "cache_dir:       %q\n", cfg.CacheDir)
	fmt.Fprintf(&sb, "override_dir:    %q\n", cfg.OverrideDir)
	fmt.Fprintf(&sb, "local_build_dir: %q\n", cfg.LocalBuildDir)
	fmt.Fprintf(&sb, "overrides_file:  %q\n", cfg.OverridesFile)

	sb.WriteString("\noracle: {\n")
	fmt.Fprintf(&sb, "\tcommand: %q\n", cfg.Oracle.Command)
	quoted := make([]string, len(cfg.Oracle.Types))
	for i, t := range cfg.Oracle.Types {
		quoted[i] = fmt.Sprintf("%q", t)
	}
	fmt.Fprintf(&sb, "\ttypes: [%s]\n", strings.Join(quoted, ", "))
	fmt.Fprintf(&sb, "\ttimeout: %q\n", cfg.Oracle.Timeout)
	sb.WriteString("}\n")

	sb.WriteString("\ntrace: {\n")
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.Trace.Verbose)
	fmt.Fprintf(&sb, "\tstrict:  %v\n", cfg.Trace.Strict)
	sb.WriteString("}\n")

	fmt.Fprintf(&sb, "\nlog_level: %q\n", cfg.LogLevel)
	return sb.String()
}

// WriteDefault writes the default configuration to path unless it exists.
func WriteDefault(path string) error {
	if fileExists(path) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
