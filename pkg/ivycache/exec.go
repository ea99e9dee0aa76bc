// SPDX-License-Identifier: MPL-2.0

package ivycache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/shell"

	"github.com/alfine/alfine/pkg/coord"
)

// DefaultTypes are the artifact types requested for classpath queries.
var DefaultTypes = []string{"jar", "bundle"}

type (
	// ExecOracle runs an Ivy-compatible command-line resolver. The configured
	// command (for example "java -jar ivy.jar -settings ivysettings.xml") is
	// extended per call with
	//
	//	-cache <dir> -dependency <org> <name> <rev>
	//
	// and, for classpath queries,
	//
	//	-types <type>... -cachepath <file> -confs <conf>...
	ExecOracle struct {
		command  []string
		cacheDir string
		types    []string
		timeout  time.Duration
		workDir  string
		env      []string
		logger   *log.Logger
	}

	// ExecOption configures an ExecOracle.
	ExecOption func(*ExecOracle)
)

// WithTypes sets the artifact types passed for classpath queries.
func WithTypes(types ...string) ExecOption {
	return func(o *ExecOracle) {
		o.types = append([]string(nil), types...)
	}
}

// WithTimeout bounds every invocation. Zero waits until the process exits.
func WithTimeout(d time.Duration) ExecOption {
	return func(o *ExecOracle) {
		o.timeout = d
	}
}

// WithWorkDir runs the command in dir instead of the current directory.
func WithWorkDir(dir string) ExecOption {
	return func(o *ExecOracle) {
		o.workDir = dir
	}
}

// WithEnv appends KEY=VALUE entries to the command environment.
func WithEnv(env ...string) ExecOption {
	return func(o *ExecOracle) {
		o.env = append(o.env, env...)
	}
}

// WithOracleLogger sets the logger used for invocation diagnostics.
func WithOracleLogger(l *log.Logger) ExecOption {
	return func(o *ExecOracle) {
		o.logger = l
	}
}

// NewExecOracle splits commandLine into words the way a POSIX shell would,
// expanding $VARIABLES from the process environment, and returns an oracle
// that resolves into cacheDir.
func NewExecOracle(commandLine, cacheDir string, opts ...ExecOption) (*ExecOracle, error) {
	fields, err := shell.Fields(commandLine, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("invalid oracle command %q: %w", commandLine, err)
	}
	if len(fields) == 0 {
		return nil, errors.New("empty oracle command")
	}
	if cacheDir == "" {
		return nil, errors.New("oracle cache directory must not be empty")
	}

	o := &ExecOracle{
		command:  fields,
		cacheDir: cacheDir,
		types:    DefaultTypes,
		logger:   discardLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Command returns the split base command.
func (o *ExecOracle) Command() []string { return append([]string(nil), o.command...) }

// CacheDir returns the oracle cache directory.
func (o *ExecOracle) CacheDir() string { return o.cacheDir }

// FetchMetadata returns the cached descriptor path of id, running the oracle
// first when the descriptor is not in the cache yet.
func (o *ExecOracle) FetchMetadata(ctx context.Context, id coord.Coordinate) (string, error) {
	path := MetadataPath(o.cacheDir, id)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	args := []string{
		"-cache", o.cacheDir,
		"-dependency", string(id.Organization), string(id.Name), string(id.Revision),
	}
	if out, err := o.run(ctx, args); err != nil {
		return "", &OracleError{Module: id, Op: "metadata", Output: out, Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("descriptor %s was not produced", path)
		}
		return "", &OracleError{Module: id, Op: "metadata", Err: err}
	}
	return path, nil
}

// Materialize runs a classpath query and returns the contents of the
// classpath file the oracle wrote.
func (o *ExecOracle) Materialize(ctx context.Context, id coord.Coordinate, confs []string) (string, error) {
	tmp, err := os.CreateTemp("", "alfine-classpath-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create classpath file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to create classpath file: %w", err)
	}

	args := []string{"-cache", o.cacheDir}
	if len(o.types) > 0 {
		args = append(args, "-types")
		args = append(args, o.types...)
	}
	args = append(args,
		"-dependency", string(id.Organization), string(id.Name), string(id.Revision),
		"-cachepath", tmpPath,
		"-confs",
	)
	args = append(args, confs...)

	if out, err := o.run(ctx, args); err != nil {
		return "", &OracleError{Module: id, Op: "classpath", Confs: confs, Output: out, Err: err}
	}

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		return "", &OracleError{Module: id, Op: "classpath", Confs: confs, Err: err}
	}
	return string(data), nil
}

func (o *ExecOracle) run(ctx context.Context, args []string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	argv := append(o.Command(), args...)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = o.workDir
	if len(o.env) > 0 {
		cmd.Env = append(os.Environ(), o.env...)
	}
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	o.logger.Debug("running oracle", "argv", argv)
	start := time.Now()
	err := cmd.Run()
	o.logger.Debug("oracle finished", "duration", time.Since(start), "error", err)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out.String(), fmt.Errorf("oracle interrupted: %w", ctxErr)
	}
	if err != nil {
		return out.String(), err
	}
	return out.String(), nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}
