// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/internal/config"
	"github.com/alfine/alfine/internal/issue"
	"github.com/alfine/alfine/pkg/buildorder"
	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/cueutil"
	"github.com/alfine/alfine/pkg/ivycache"
	"github.com/alfine/alfine/pkg/ivymod"
)

// classifyError maps a failure to the issue catalog entry that explains it.
// Zero means no catalog entry applies.
func classifyError(err error) issue.Id {
	var ae *issue.ActionableError
	switch {
	case errors.Is(err, buildorder.ErrDependencyCycle):
		return issue.DependencyCycleId
	case errors.Is(err, ivycache.ErrInMemoryCache):
		return issue.InMemoryCacheId
	case errors.Is(err, buildorder.ErrUnresolvedDependency):
		return issue.UnresolvedDependencyId
	case errors.Is(err, ivycache.ErrAmbiguousClasspathOutput):
		return issue.AmbiguousClasspathId
	case errors.Is(err, ivycache.ErrOracleResolutionFailure):
		return issue.OracleFailureId
	case errors.Is(err, ivycache.ErrDuplicateModuleDefinition), errors.Is(err, ivymod.ErrAlreadyRegistered):
		return issue.DuplicateModuleId
	case errors.Is(err, ivymod.ErrUnknownConfiguration):
		return issue.UnknownConfigurationId
	case errors.Is(err, ivymod.ErrMalformedModule):
		return issue.MalformedModuleId
	case errors.Is(err, coord.ErrMalformedCoordinate):
		return issue.MalformedCoordinateId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	case errors.Is(err, os.ErrPermission):
		return issue.PermissionDeniedId
	case errors.As(err, &ae) && ae.Operation == "load configuration":
		return issue.ConfigLoadFailedId
	case errors.Is(err, cueutil.ErrInvalidDocument):
		return issue.OverridesInvalidId
	}
	return 0
}

// formatErrorForDisplay formats an error for user display. ActionableErrors
// use their Format method, which shows the full chain in verbose mode.
func formatErrorForDisplay(err error, verbose bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verbose)
	}
	if verbose {
		return (&issue.ActionableError{Operation: "run command", Cause: err}).Format(true)
	}
	return err.Error()
}

// renderError writes the styled error and, in verbose mode, the catalog
// guidance for its failure class.
func renderError(w io.Writer, err error, verbose bool) {
	_, _ = fmt.Fprintf(w, "%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))

	var oerr *ivycache.OracleError
	if verbose && errors.As(err, &oerr) && oerr.Output != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n%s\n", SubtitleStyle.Render("Oracle output:"), VerboseStyle.Render(oerr.Output))
	}

	id := classifyError(err)
	if id == 0 || !verbose {
		return
	}
	if entry := issue.Get(id); entry != nil {
		if rendered, renderErr := entry.Render(glamourStyle(w)); renderErr == nil {
			_, _ = fmt.Fprint(w, rendered)
		}
	}
}

// runE adapts a command body: failures are rendered once to stderr and
// returned as an ExitError with status 1.
func (a *App) runE(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := fn(cmd, args)
		if err == nil {
			return nil
		}
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return err
		}
		renderError(a.stderr, err, a.flags.verbose)
		cmd.SilenceErrors = true
		cmd.SilenceUsage = true
		return &ExitError{Code: 1}
	}
}

// glamourStyle picks the dark style for terminals and plain text otherwise.
func glamourStyle(w io.Writer) string {
	f, ok := w.(*os.File)
	if !ok {
		return "notty"
	}
	info, err := f.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return "notty"
	}
	return "dark"
}
