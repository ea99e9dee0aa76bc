// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/alfine/alfine/pkg/coord"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "alfine",
		Short: "Resolve Ivy modules and compute build orders",
		Long: TitleStyle.Render("alfine") + SubtitleStyle.Render(" - coordinate-based module resolution") + `

alfine resolves modules identified by organisation:name:revision
coordinates, computes the order in which a dependency graph must be
built and materializes classpaths through an Ivy-compatible oracle.

` + SubtitleStyle.Render("Examples:") + `
  alfine resolve dacapo:batik:1.0              Show a module and its dependencies
  alfine order dacapo:batik:1.0 --waves        Group the build order into waves
  alfine classpath dacapo:batik:1.0 -c runtime Print a classpath
  alfine config show                           Show the effective configuration`,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&app.flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/alfine/config.cue)")
	flags.BoolVarP(&app.flags.verbose, "verbose", "v", false, "enable verbose output")
	flags.StringVar(&app.flags.cacheDir, "cache-dir", "", "oracle cache directory (overrides cache_dir)")
	flags.StringVar(&app.flags.overrides, "overrides", "", "CUE file with local module declarations (overrides overrides_file)")

	root.AddCommand(
		newResolveCommand(app),
		newOrderCommand(app),
		newDepsCommand(app),
		newClasspathCommand(app),
		newLocationCommand(app),
		newInstallCommand(app),
		newConfigCommand(app),
	)
	return root
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := execute(context.Background(), NewRootCommand(app)); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// execute runs root through fang.
func execute(ctx context.Context, root *cobra.Command) error {
	return fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	)
}

// handleError prints errors cobra raised before a command ran, such as usage
// errors. Command failures are rendered by runE and arrive as *ExitError.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// coordinateArg parses the positional coordinate of a command.
func coordinateArg(args []string, i int) (coord.Coordinate, error) {
	c, err := coord.Parse(args[i])
	if err != nil {
		return coord.Coordinate{}, err
	}
	return c, nil
}
