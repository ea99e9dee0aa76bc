// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/pkg/buildorder"
)

type classpathFlags struct {
	confs  []string
	all    bool
	joined bool
	jobs   int
}

func newClasspathCommand(app *App) *cobra.Command {
	var flags classpathFlags

	cmd := &cobra.Command{
		Use:   "classpath <org:name:rev> --conf <conf>...",
		Short: "Print the resolved classpath of a module",
		Long: `Ask the oracle for the artifacts that make up the classpath of a module
under the given configurations and print them, one per line. Artifacts found
in local_build_dir replace the oracle's copies.

With --all, resolve the classpath of every module in the build order, wave by
wave, running up to --jobs oracle queries at once.`,
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
			ctx := cmd.Context()

			if !flags.all {
				paths, err := s.cache.ResolveArtifacts(ctx, id, flags.confs...)
				if err != nil {
					return err
				}
				app.printPaths(paths, flags.joined)
				return nil
			}

			res, err := s.cache.ComputeBuildOrder(ctx, id, buildorder.WithStrict(s.cfg.Trace.Strict))
			if err != nil {
				return err
			}
			warnCycles(s, res)
			waves, err := res.Waves()
			if err != nil {
				return err
			}
			if err := s.cache.PrefetchClasspaths(ctx, waves, flags.confs, flags.jobs); err != nil {
				return err
			}
			for _, c := range res.Order {
				paths, err := s.cache.ResolveArtifacts(ctx, c, flags.confs...)
				if err != nil {
					return err
				}
				app.printf("%s\n", TitleStyle.Render(c.String()))
				app.printPaths(paths, flags.joined)
			}
			return nil
		}),
	}

	cmd.Flags().StringSliceVarP(&flags.confs, "conf", "c", nil, "configurations to resolve (repeatable)")
	cmd.Flags().BoolVar(&flags.all, "all", false, "resolve the classpath of every module in the build order")
	cmd.Flags().BoolVar(&flags.joined, "joined", false, "print paths on one line joined by the OS path list separator")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "concurrent oracle queries per wave with --all")
	_ = cmd.MarkFlagRequired("conf")
	return cmd
}

func (a *App) printPaths(paths []string, joined bool) {
	if joined {
		a.printf("%s\n", strings.Join(paths, string(filepath.ListSeparator)))
		return
	}
	for _, p := range paths {
		a.printf("%s\n", p)
	}
}
