// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCommand creates the `sofloc version` command tree.
func newVersionCommand(app *App) *cobra.Command {
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show or set the solution version of an archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var showSrc sourceFlags
	showCmd := &cobra.Command{
		Use:   "show <archive>",
		Short: "Print the declared solution version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := app.openSolution(cmd.Context(), args[0], showSrc)
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, sol.Version())
			return nil
		},
	}
	showSrc.register(showCmd)

	var (
		setSrc sourceFlags
		setOut outputFlags
	)
	setCmd := &cobra.Command{
		Use:   "set <archive> <version>",
		Short: "Raise the solution version",
		Long: `Raise the solution version.

The new version must be dot-separated integers and strictly greater than the
version the archive was exported with. The version token in the archive name
is replaced too, so the default output file name follows the new version.`,
		Example: "  sofloc version set Contoso_1_0_0_0.zip 1.1.0.0",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := app.openSolution(cmd.Context(), args[0], setSrc)
			if err != nil {
				return err
			}

			before := sol.Manifests()
			previous := sol.Version()
			if err := sol.UpdateVersion(args[1]); err != nil {
				return app.fail("update solution version", args[1], err)
			}
			fmt.Fprintf(app.stdout, "%s Version %s → %s\n", SuccessStyle.Render("✓"), previous, CmdStyle.Render(sol.Version()))
			return app.writeSolution(cmd.Context(), sol, before, setOut, setSrc)
		},
	}
	setSrc.register(setCmd)
	setOut.register(setCmd)

	versionCmd.AddCommand(showCmd, setCmd)
	return versionCmd
}
