package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// writeJSON renders v as indented JSON on the command's stdout, for the
// --json flags shared by the read-only subcommands.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirmDestructive prompts the operator before an unrecoverable operation.
// Anything other than "yes" aborts.
func confirmDestructive(cmd *cobra.Command, warning string) (bool, error) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, warning)
	fmt.Fprint(out, "Type 'yes' to continue: ")

	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimSpace(line) == "yes", nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
