package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/textutil"
)

func newClipsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var offline bool

	cmd := &cobra.Command{
		Use:   "clips <project>",
		Short: "List a project's clips and their processing state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := args[0]
			clips, err := fetchClips(cmd.Context(), ctx, project, offline)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, map[string]any{"project": project, "clips": clips})
			}

			out := cmd.OutOrStdout()
			if len(clips) == 0 {
				fmt.Fprintf(out, "No clips in %s\n", project)
				return nil
			}

			rows := make([][]string, 0, len(clips))
			for _, clip := range clips {
				rows = append(rows, []string{
					clip.ClipID,
					string(clip.Type),
					string(clip.Status),
					passSummary(clip),
					strconv.Itoa(clip.End - clip.Start),
				})
			}
			headers := []string{"Clip", "Type", "Status", "Passes", "Frames"}
			aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.Flags().BoolVar(&offline, "offline", false, "Use the locally cached clip listing instead of the backend")
	return cmd
}

// fetchClips reads the clip listing from the backend, or from the local
// snapshot when offline is requested or the backend is unreachable.
func fetchClips(runCtx context.Context, ctx *commandContext, project string, offline bool) ([]backend.ClipState, error) {
	if !offline {
		var clips []backend.ClipState
		err := ctx.withClient(func(client *backend.Client) error {
			proj, err := client.Project(runCtx, project)
			if err != nil {
				return err
			}
			clips = proj.Clips
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("read project %s: %w", project, err)
		}
		if store, storeErr := ctx.ensureStore(); storeErr == nil {
			_ = store.SaveClips(runCtx, project, clips)
		}
		return clips, nil
	}

	store, err := ctx.ensureStore()
	if err != nil {
		return nil, fmt.Errorf("open state cache: %w", err)
	}
	clips, err := store.LoadClips(runCtx, project)
	if err != nil {
		return nil, err
	}
	if clips == nil {
		return nil, fmt.Errorf("no cached clip listing for %s", project)
	}
	return clips, nil
}

func passSummary(clip backend.ClipState) string {
	if len(clip.Actions) == 0 {
		return "-"
	}
	labels := make([]string, 0, len(clip.Actions))
	for _, action := range clip.Actions {
		labels = append(labels, textutil.PassLabel(action.Pass, action.Character))
	}
	return strings.Join(labels, ", ")
}
