// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
)

const (
	// DefaultCacheDir is the oracle cache directory.
	DefaultCacheDir = "ivy-cache"
	// DefaultOverrideDir is the on-disk local override resolver directory.
	DefaultOverrideDir = "ivy-daivy-resolver-cache"
	// DefaultOracleCommand runs Ivy standalone with the project settings.
	DefaultOracleCommand = "java -jar tools/ivy-2.5.2.jar -warn -settings settings/ivysettings.xml"
	// DefaultLogLevel is the logger level when none is configured.
	DefaultLogLevel = "info"
)

var (
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidLoadOptions is returned by LoadOptions.Validate.
	ErrInvalidLoadOptions = errors.New("invalid load options")
)

type (
	// Config is the effective alfine configuration.
	Config struct {
		// CacheDir is where the oracle keeps descriptors and artifacts.
		CacheDir string `json:"cache_dir" mapstructure:"cache_dir" toml:"cache_dir"`
		// OverrideDir receives installed local override descriptors.
		OverrideDir string `json:"override_dir" mapstructure:"override_dir" toml:"override_dir"`
		// LocalBuildDir holds freshly built artifacts that replace oracle paths.
		LocalBuildDir string `json:"local_build_dir" mapstructure:"local_build_dir" toml:"local_build_dir"`
		// OverridesFile is a CUE file with local module declarations.
		OverridesFile string       `json:"overrides_file" mapstructure:"overrides_file" toml:"overrides_file"`
		Oracle        OracleConfig `json:"oracle" mapstructure:"oracle" toml:"oracle"`
		Trace         TraceConfig  `json:"trace" mapstructure:"trace" toml:"trace"`
		LogLevel      string       `json:"log_level" mapstructure:"log_level" toml:"log_level"`
	}

	// OracleConfig configures the external resolution oracle.
	OracleConfig struct {
		// Command is split into words like a shell would; $VARS are expanded.
		Command string   `json:"command" mapstructure:"command" toml:"command"`
		Types   []string `json:"types" mapstructure:"types" toml:"types"`
		// Timeout bounds each invocation, as a Go duration. "0s" waits forever.
		Timeout string `json:"timeout" mapstructure:"timeout" toml:"timeout"`
	}

	// TraceConfig controls build-order traversal.
	TraceConfig struct {
		Verbose bool `json:"verbose" mapstructure:"verbose" toml:"verbose"`
		Strict  bool `json:"strict" mapstructure:"strict" toml:"strict"`
	}

	// InvalidConfigError lists every invalid field of a Config.
	// It wraps ErrInvalidConfig for errors.Is() compatibility.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// LoadOptions defines explicit configuration loading inputs.
	LoadOptions struct {
		// ConfigFilePath forces loading from a specific config file when set.
		ConfigFilePath string
		// ConfigDirPath overrides the user configuration directory when set.
		ConfigDirPath string
		// BaseDir is searched for config.cue instead of the working directory.
		BaseDir string
	}
)

// DefaultConfig returns the configuration used when nothing is configured.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:    DefaultCacheDir,
		OverrideDir: DefaultOverrideDir,
		Oracle: OracleConfig{
			Command: DefaultOracleCommand,
			Types:   []string{"jar", "bundle"},
			Timeout: "0s",
		},
		LogLevel: DefaultLogLevel,
	}
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate checks the constraints the CUE schema cannot see after
// environment overrides were applied.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.CacheDir) == "" {
		errs = append(errs, errors.New("cache_dir must not be empty"))
	}
	if strings.TrimSpace(c.OverrideDir) == "" {
		errs = append(errs, errors.New("override_dir must not be empty"))
	}
	if strings.TrimSpace(c.Oracle.Command) == "" {
		errs = append(errs, errors.New("oracle.command must not be empty"))
	}
	if _, err := c.OracleTimeout(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return &InvalidConfigError{FieldErrors: errs}
	}
	return nil
}

// OracleTimeout parses Oracle.Timeout. An empty value means no timeout.
func (c *Config) OracleTimeout() (time.Duration, error) {
	if c.Oracle.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Oracle.Timeout)
	if err != nil {
		return 0, fmt.Errorf("oracle.timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("oracle.timeout: negative duration %s", d)
	}
	return d, nil
}

// Level parses LogLevel.
func (c *Config) Level() (log.Level, error) {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// TOML renders the configuration as a TOML document.
func (c *Config) TOML() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return data, nil
}

// Validate rejects whitespace-only paths.
func (o LoadOptions) Validate() error {
	var errs []error
	for name, v := range map[string]string{
		"config file path": o.ConfigFilePath,
		"config dir path":  o.ConfigDirPath,
		"base dir":         o.BaseDir,
	} {
		if v != "" && strings.TrimSpace(v) == "" {
			errs = append(errs, fmt.Errorf("%s must not be whitespace", name))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidLoadOptions, errors.Join(errs...))
	}
	return nil
}
