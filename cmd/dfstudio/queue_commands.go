package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/orchestrator"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue clips for processing",
	}
	queueCmd.AddCommand(newQueueClipCommand(ctx))
	queueCmd.AddCommand(newQueueAllCommand(ctx))
	return queueCmd
}

func (c *commandContext) orchestrator() (*orchestrator.Orchestrator, error) {
	client, err := c.ensureClient()
	if err != nil {
		return nil, err
	}
	var cleaner orchestrator.Cleaner
	if store, storeErr := c.ensureStore(); storeErr == nil {
		cleaner = store
	}
	return orchestrator.New(orchestrator.Options{
		API:      client,
		Notifier: c.notifier(),
		Cleaner:  cleaner,
		Logger:   c.ensureLogger(),
	}), nil
}

func newQueueClipCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clip <project> <clip-id>",
		Short: "Queue a single clip",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			if err := o.QueueOne(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %s for processing\n", args[1])
			return nil
		},
	}
}

func newQueueAllCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "all <project>",
		Short: "Queue every eligible clip of a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := ctx.orchestrator()
			if err != nil {
				return err
			}
			count, err := o.QueueAll(cmd.Context(), args[0])
			if err != nil {
				var missing *backend.QueueAllError
				if errors.As(err, &missing) {
					out := cmd.OutOrStdout()
					fmt.Fprintln(out, missing.Message)
					for _, entry := range missing.Missing {
						fmt.Fprintf(out, "  missing mask: %s\n", entry)
					}
					return errors.New("queue all rejected: masks missing")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Queued %d clips for processing\n", count)
			return nil
		},
	}
}
