package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/textutil"
)

func newCharactersCommand(ctx *commandContext) *cobra.Command {
	charactersCmd := &cobra.Command{
		Use:   "characters",
		Short: "Manage custom character reference images",
	}
	charactersCmd.AddCommand(newCharactersCheckCommand(ctx))
	charactersCmd.AddCommand(newCharactersUploadCommand(ctx))
	return charactersCmd
}

func newCharactersCheckCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show which character references are uploaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *backend.Client) error {
				status, err := client.CheckCharacters(cmd.Context())
				if err != nil {
					return fmt.Errorf("check characters: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Character 1", presenceKind(status.Char1), presenceLabel(status.Char1), colorize))
				fmt.Fprintln(out, renderStatusLine("Character 2", presenceKind(status.Char2), presenceLabel(status.Char2), colorize))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	return cmd
}

func presenceKind(present bool) statusKind {
	if present {
		return statusOK
	}
	return statusWarn
}

func presenceLabel(present bool) string {
	if present {
		return "uploaded"
	}
	return "missing"
}

func newCharactersUploadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <name> <image-file>",
		Short: "Upload a character reference image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, path := args[0], args[1]
			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open image: %w", err)
			}
			defer file.Close()

			return ctx.withClient(func(client *backend.Client) error {
				result, err := client.UploadCharacter(cmd.Context(), name, file, filepath.Base(path))
				if err != nil {
					return fmt.Errorf("upload character %s: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Uploaded reference for %s: %s\n",
					textutil.DisplayName(name), client.ResolveURL(result.URL))
				return nil
			})
		},
	}
}
