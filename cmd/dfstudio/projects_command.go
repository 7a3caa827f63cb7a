package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List projects known to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *backend.Client) error {
				projects, err := client.Projects(cmd.Context())
				if err != nil {
					return fmt.Errorf("list projects: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, map[string]any{"projects": projects})
				}

				out := cmd.OutOrStdout()
				if len(projects) == 0 {
					fmt.Fprintln(out, "No projects found")
					return nil
				}
				rows := make([][]string, 0, len(projects))
				for _, name := range projects {
					rows = append(rows, []string{name})
				}
				fmt.Fprintln(out, renderTable([]string{"Project"}, rows, nil))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}
