// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/pkg/buildorder"
	"github.com/alfine/alfine/pkg/coord"
	"github.com/alfine/alfine/pkg/ivymod"
)

func newDepsCommand(app *App) *cobra.Command {
	var confs []string

	cmd := &cobra.Command{
		Use:   "deps <org:name:rev>",
		Short: "Print the dependency tree of a module",
		Long: `Print the dependency tree of a module. Modules already printed are
marked with ^ instead of being expanded again, and edges that close a cycle
are marked (cycle). The sorted set of visited modules follows the tree.

With --conf, print only the direct dependencies that are active for the given
configurations, with the target configurations each one pulls in.`,
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
			if len(confs) > 0 {
				return app.printActiveDependencies(cmd.Context(), s, id, confs)
			}

			res, err := s.cache.ComputeBuildOrder(cmd.Context(), id, buildorder.WithTrace(app.stdout))
			if err != nil {
				return err
			}
			app.printf("\n%s\n", TitleStyle.Render("Visited"))
			for _, c := range res.Visited() {
				parents := referrers(res.VisitedFrom[c])
				if len(parents) == 0 {
					app.printf("  %s\n", c)
					continue
				}
				app.printf("  %s %s\n", c, VerboseStyle.Render("from "+strings.Join(coord.Strings(parents), ", ")))
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&confs, "conf", "c", nil, "configurations of the module to evaluate mappings for")
	return cmd
}

// printActiveDependencies evaluates the dependency mappings of id for confs
// and prints each active edge with the resolved target configurations.
func (a *App) printActiveDependencies(ctx context.Context, s *session, id coord.Coordinate, confs []string) error {
	m, err := s.cache.Resolve(ctx, id)
	if err != nil {
		return err
	}
	active, err := m.DependenciesFor(confs...)
	if err != nil {
		return err
	}

	for _, ad := range active {
		target, err := s.cache.Resolve(ctx, ad.Target)
		if err != nil {
			return err
		}
		names, err := ivymod.ResolveTargetConfs(ad.Targets, target.Configurations())
		if err != nil {
			return err
		}
		a.printf("%s -> %s\n", CoordStyle.Render(ad.Target.String()), strings.Join(names, ","))
	}
	return nil
}

// referrers returns the distinct modules that led directly to a node, given
// the paths it was reached by.
func referrers(paths [][]coord.Coordinate) []coord.Coordinate {
	var out []coord.Coordinate
	for _, p := range paths {
		if len(p) == 0 {
			continue
		}
		if parent := p[len(p)-1]; !slices.Contains(out, parent) {
			out = append(out, parent)
		}
	}
	return out
}
