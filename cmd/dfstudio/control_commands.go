package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/orchestrator"
)

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the processing worker after its current pass",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			if err := o.Stop(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Stop requested; queued clips remain queued")
			return nil
		},
	}
}

func newResetCommand(ctx *commandContext) *cobra.Command {
	var assumeYes bool

	cmd := &cobra.Command{
		Use:   "reset <project>",
		Short: "Discard a project's generated outputs (saved masks are preserved)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := args[0]
			confirmed := assumeYes
			if !confirmed {
				var err error
				confirmed, err = confirmDestructive(cmd, fmt.Sprintf(
					"This permanently deletes every processed clip for %s. Saved masks are preserved.", project))
				if err != nil {
					return err
				}
			}
			if !confirmed {
				fmt.Fprintln(cmd.OutOrStdout(), "Reset aborted")
				return nil
			}

			o, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			if err := o.ResetProject(cmd.Context(), project, confirmed); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s reset\n", project)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newStitchCommand(ctx *commandContext) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "stitch <project>",
		Short: "Concatenate processed clips into the final video",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			url, err := o.Stitch(cmd.Context(), args[0], force)
			if err != nil {
				if errors.Is(err, orchestrator.ErrPendingClips) {
					return fmt.Errorf("%w (unprocessed clips will be substituted with originals; re-run with --force to stitch anyway)", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Final video ready: %s\n", url)
			return ctx.withClient(func(client *backend.Client) error {
				fmt.Fprintf(out, "Download: %s\n", client.ResolveURL(url))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Stitch even when unprocessed clips remain")
	return cmd
}
