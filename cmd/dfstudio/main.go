package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := newRootCommand().Execute(); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			// Interrupting a watch or editor session is a normal exit,
			// not an error worth printing.
		case errors.Is(err, backend.ErrUnauthorized):
			fmt.Fprintln(os.Stderr, "dfstudio: not authenticated: the backend rejected the access token")
			fmt.Fprintln(os.Stderr, "Set api_token in the config file or export DFSTUDIO_API_TOKEN, then retry.")
		default:
			fmt.Fprintln(os.Stderr, "dfstudio:", err)
		}
		return 1
	}
	return 0
}
