// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newInstallCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "install <org:name:rev> <artifact>",
		Short: "Copy a built artifact into the oracle cache of a module",
		Long: `Copy a locally built artifact into the jars directory of the module's
oracle cache location, so later classpath queries pick it up.`,
		Args: cobra.ExactArgs(2),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			id, err := coordinateArg(args, 0)
			if err != nil {
				return err
			}
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			dst, err := s.cache.InstallArtifact(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			app.printf("%s installed %s\n", SuccessStyle.Render("✓"), dst)
			return nil
		}),
	}
}
