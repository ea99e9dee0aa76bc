// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfine/alfine/pkg/ivymod"
)

func newResolveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <org:name:rev>",
		Short: "Resolve a module and its dependency closure",
		Long: `Resolve a module and every module reachable through its dependencies,
then print the module's configurations, dependencies and artifacts.`,
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
			m, err := s.cache.Resolve(cmd.Context(), id)
			if err != nil {
				return err
			}
			app.printModule(m)
			app.printf("\n%s %d modules in closure\n", SuccessStyle.Render("✓"), len(s.cache.Modules()))
			return nil
		}),
	}
}

func (a *App) printModule(m *ivymod.Module) {
	a.printf("%s %s\n", CoordStyle.Render(m.ID().String()), VerboseStyle.Render("("+m.Source()+")"))

	a.printf("\n%s\n", TitleStyle.Render("Configurations"))
	for _, c := range m.Configurations().All() {
		line := "  " + c.Name + " " + VerboseStyle.Render(string(c.Visibility))
		if len(c.Extends) > 0 {
			line += VerboseStyle.Render(" extends " + strings.Join(c.Extends, ","))
		}
		if !c.Transitive {
			line += VerboseStyle.Render(" non-transitive")
		}
		if c.IsDeprecated() {
			line += WarningStyle.Render(" deprecated")
		}
		a.printf("%s\n", line)
	}

	deps := m.Dependencies()
	a.printf("\n%s\n", TitleStyle.Render("Dependencies"))
	if len(deps) == 0 {
		a.printf("  %s\n", VerboseStyle.Render("none"))
	}
	for i, d := range deps {
		line := "  " + CoordStyle.Render(d.Target.String()) + " " + VerboseStyle.Render(m.MappingOf(i).String())
		if d.Force {
			line += WarningStyle.Render(" force")
		}
		a.printf("%s\n", line)
	}

	a.printf("\n%s\n", TitleStyle.Render("Artifacts"))
	names := m.ArtifactFileNames()
	if len(names) == 0 {
		a.printf("  %s\n", VerboseStyle.Render("none"))
	}
	for _, name := range names {
		a.printf("  %s\n", name)
	}
}
