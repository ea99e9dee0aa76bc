// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

func newLocationCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "location <org:name:rev>",
		Short: "Print where the oracle keeps a module",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			id, err := coordinateArg(args, 0)
			if err != nil {
				return err
			}
			s, err := app.newSession(cmd.Context())
			if err != nil {
				return err
			}
			dir, err := s.cache.LocationOf(cmd.Context(), id)
			if err != nil {
				return err
			}
			app.printf("%s\n", dir)
			return nil
		}),
	}
}
