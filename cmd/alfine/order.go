// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/pkg/buildorder"
)

type orderFlags struct {
	waves  bool
	strict bool
	trace  bool
}

func newOrderCommand(app *App) *cobra.Command {
	var flags orderFlags

	cmd := &cobra.Command{
		Use:   "order <org:name:rev>",
		Short: "Print the build order of a module's dependency graph",
		Long: `Print every module reachable from the root, dependencies first and the
root last. Dependency cycles are broken at the edge that closes them unless
--strict is given.`,
		Args: cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			id, err := coordinateArg(args, 0)
			if err != nil {
				return err
			}
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}

			res, err := s.cache.ComputeBuildOrder(cmd.Context(), id, app.orderOptions(cmd, s, flags)...)
			if err != nil {
				return err
			}
			warnCycles(s, res)

			if !flags.waves {
				for _, c := range res.Order {
					app.printf("%s\n", c)
				}
				return nil
			}
			waves, err := res.Waves()
			if err != nil {
				return err
			}
			for i, wave := range waves {
				app.printf("%s\n", waveStyle.Render(fmt.Sprintf("wave %d", i+1)))
				for _, c := range wave {
					app.printf("  %s\n", c)
				}
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&flags.waves, "waves", false, "group the order into waves of mutually independent modules")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "fail on dependency cycles (default from trace.strict)")
	cmd.Flags().BoolVar(&flags.trace, "trace", false, "write the traversal trace to stderr (default from trace.verbose)")
	return cmd
}

// orderOptions combines the command flags with the trace configuration.
// Flags that were set explicitly take precedence.
func (a *App) orderOptions(cmd *cobra.Command, s *session, flags orderFlags) []buildorder.Option {
	strict := s.cfg.Trace.Strict
	if cmd.Flags().Changed("strict") {
		strict = flags.strict
	}
	trace := s.cfg.Trace.Verbose
	if cmd.Flags().Changed("trace") {
		trace = flags.trace
	}

	opts := []buildorder.Option{buildorder.WithStrict(strict)}
	if trace {
		opts = append(opts, buildorder.WithTrace(a.stderr))
	}
	return opts
}

// warnCycles logs every edge that closed a dependency cycle.
func warnCycles(s *session, res *buildorder.Result) {
	for _, e := range res.BackEdges {
		s.logger.Warn("dependency cycle", "from", e.From.String(), "to", e.To.String())
	}
}
