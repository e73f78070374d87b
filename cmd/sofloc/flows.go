// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/sofloc/sofloc/pkg/solution"
)

// newFlowsCommand creates the `sofloc flows` command tree.
func newFlowsCommand(app *App) *cobra.Command {
	flowsCmd := &cobra.Command{
		Use:   "flows",
		Short: "List, copy and delete flows of a solution archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flowsCmd.AddCommand(newFlowsListCommand(app))
	flowsCmd.AddCommand(newFlowsCopyCommand(app))
	flowsCmd.AddCommand(newFlowsDeleteCommand(app))
	return flowsCmd
}

func newFlowsListCommand(app *App) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "list <archive>",
		Short: "List the flows of a solution archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := app.openSolution(cmd.Context(), args[0], src)
			if err != nil {
				return err
			}
			printFlows(app, sol)
			return nil
		},
	}
	src.register(cmd)
	return cmd
}

func newFlowsCopyCommand(app *App) *cobra.Command {
	var (
		src        sourceFlags
		out        outputFlags
		flowID     string
		newName    string
		newVersion string
	)

	cmd := &cobra.Command{
		Use:   "copy <archive> --flow <id> --name <display name>",
		Short: "Duplicate a flow under a new id and name",
		Long: `Duplicate a flow under a new id and name.

The copy is inserted right after the source flow in both manifests and gets a
fresh definition file. With --version the solution version is raised first;
the archive name follows the new version.`,
		Example: `  sofloc flows copy Contoso_1_0_0_0.zip --flow 0f48cba9-ef0c-ed11-82e4-000d3a64f6f2 --name "Nightly sync"
  sofloc flows copy Contoso_1_0_0_0.zip --flow {0F48CBA9-EF0C-ED11-82E4-000D3A64F6F2} --name Copy --version 1.1 --diff`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := app.openSolution(cmd.Context(), args[0], src)
			if err != nil {
				return err
			}

			before := sol.Manifests()
			existing := sol.Workflows()
			if err := sol.CopyFlow(flowID, newName, newVersion); err != nil {
				return app.fail("copy flow", flowID, err)
			}

			for _, wf := range sol.Workflows() {
				if !slices.Contains(existing, wf) {
					fmt.Fprintf(app.stdout, "%s Copied %s to %q (%s)\n",
						SuccessStyle.Render("✓"), CmdStyle.Render(flowID), wf.Name, CmdStyle.Render(wf.ID))
				}
			}
			return app.writeSolution(cmd.Context(), sol, before, out, src)
		},
	}

	src.register(cmd)
	out.register(cmd)
	cmd.Flags().StringVar(&flowID, "flow", "", "id of the flow to copy (braces and case are ignored)")
	cmd.Flags().StringVar(&newName, "name", "", "display name of the copy")
	cmd.Flags().StringVar(&newVersion, "version", "", "raise the solution version before copying")
	_ = cmd.MarkFlagRequired("flow")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.RegisterFlagCompletionFunc("flow", flowIDCompletion(app, &src))
	return cmd
}

func newFlowsDeleteCommand(app *App) *cobra.Command {
	var (
		src    sourceFlags
		out    outputFlags
		flowID string
	)

	cmd := &cobra.Command{
		Use:   "delete <archive> --flow <id>",
		Short: "Remove a flow from both manifests and the archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sol, err := app.openSolution(cmd.Context(), args[0], src)
			if err != nil {
				return err
			}

			before := sol.Manifests()
			if err := sol.DeleteFlow(flowID); err != nil {
				return app.fail("delete flow", flowID, err)
			}
			fmt.Fprintf(app.stdout, "%s Deleted %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(flowID))
			return app.writeSolution(cmd.Context(), sol, before, out, src)
		},
	}

	src.register(cmd)
	out.register(cmd)
	cmd.Flags().StringVar(&flowID, "flow", "", "id of the flow to delete (braces and case are ignored)")
	_ = cmd.MarkFlagRequired("flow")
	_ = cmd.RegisterFlagCompletionFunc("flow", flowIDCompletion(app, &src))
	return cmd
}

func printFlows(app *App, sol *solution.Solution) {
	fmt.Fprintf(app.stdout, "%s %s\n", TitleStyle.Render("Solution:"), sol.Name())
	fmt.Fprintf(app.stdout, "%s %s\n\n", TitleStyle.Render("Version:"), sol.Version())

	flows := sol.Workflows()
	if len(flows) == 0 {
		fmt.Fprintln(app.stdout, SubtitleStyle.Render("No flows found."))
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ColorMuted)).
		Headers("ID", "NAME").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tableHeaderStyle
			}
			return tableCellStyle
		})
	for _, wf := range flows {
		t.Row(wf.ID, wf.Name)
	}
	fmt.Fprintln(app.stdout, t.Render())
}

// flowIDCompletion completes --flow from the ids of the archive argument.
func flowIDCompletion(app *App, src *sourceFlags) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		data, err := app.Archives.Read(cmd.Context(), args[0])
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		var sol *solution.Solution
		if src.base64 {
			sol = solution.NewBase64(string(data), args[0])
		} else {
			sol = solution.New(data, args[0])
		}
		if err := sol.Load(); err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		completions := make([]string, 0, len(sol.Workflows()))
		for _, wf := range sol.Workflows() {
			completions = append(completions, wf.ID+"\t"+wf.Name)
		}
		return completions, cobra.ShellCompDirectiveNoFileComp
	}
}
