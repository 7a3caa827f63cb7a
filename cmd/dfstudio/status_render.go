package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusKinds = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

const statusLabelWidth = 18

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	meta := statusKinds[kind]
	statusText := "[" + meta.label + "]"
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", statusText)
	if colorize && meta.color != "" {
		line = meta.color + line + ansiReset
	}
	return line
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderGlobalStatus prints the worker status block shared by `status` and
// the watch loop.
func renderGlobalStatus(out io.Writer, status backend.GlobalStatus, colorize bool) {
	workerKind := statusInfo
	workerMsg := "idle"
	if status.IsProcessing {
		workerKind = statusOK
		workerMsg = "processing"
		if status.CurrentClip != "" {
			workerMsg = fmt.Sprintf("processing %s (pass %d)", status.CurrentClip, status.CurrentPass)
		}
	}
	fmt.Fprintln(out, renderStatusLine("Worker", workerKind, workerMsg, colorize))

	progress := fmt.Sprintf("%d/%d clips processed", status.ProcessedClips, status.TotalClips)
	fmt.Fprintln(out, renderStatusLine("Progress", statusInfo, progress, colorize))

	queueMsg := "empty"
	if n := status.QueueSize(); n > 0 {
		queueMsg = fmt.Sprintf("%d queued: %s", n, strings.Join(status.Queue, ", "))
	}
	fmt.Fprintln(out, renderStatusLine("Queue", statusInfo, queueMsg, colorize))

	if status.LastCompleted != "" {
		fmt.Fprintln(out, renderStatusLine("Last completed", statusOK, status.LastCompleted, colorize))
	}
}
