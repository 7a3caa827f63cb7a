package main

import (
	"fmt"
	"io"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/poller"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var watch bool
	var project string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show backend processing status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if watch {
				return runStatusWatch(cmd, ctx, project)
			}
			return ctx.withClient(func(client *backend.Client) error {
				status, err := client.Status(cmd.Context())
				if err != nil {
					return fmt.Errorf("read status: %w", err)
				}
				if jsonOutput {
					return writeJSON(cmd, status)
				}
				out := cmd.OutOrStdout()
				renderGlobalStatus(out, *status, shouldColorize(out))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON output")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Poll continuously and print changes until interrupted")
	cmd.Flags().StringVarP(&project, "project", "p", "", "Project whose clip changes to watch")
	return cmd
}

// watchPrinter serializes watch output so poller hooks and the banner
// expiry timer never interleave writes. Completion banners are erased
// after their lifetime on ANSI terminals, but only while the banner is
// still the most recent line; newer output supersedes the erase.
type watchPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
	lifetime time.Duration
	seq      int
}

func (w *watchPrinter) block(render func(io.Writer)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.seq++
	render(w.out)
}

func (w *watchPrinter) banner(text string) {
	w.mu.Lock()
	w.seq++
	mark := w.seq
	if w.colorize {
		text = ansiGreen + text + ansiReset
	}
	fmt.Fprintln(w.out, text)
	w.mu.Unlock()

	if !w.colorize || w.lifetime <= 0 {
		return
	}
	time.AfterFunc(w.lifetime, func() { w.expireBanner(mark) })
}

func (w *watchPrinter) expireBanner(mark int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.seq != mark {
		return
	}
	fmt.Fprint(w.out, "\x1b[1A\x1b[2K\r")
}

// runStatusWatch polls until interrupted, printing a status block whenever
// the payload changes and a completion banner once per finished job.
func runStatusWatch(cmd *cobra.Command, ctx *commandContext, project string) error {
	client, err := ctx.ensureClient()
	if err != nil {
		return err
	}
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	notifier := ctx.notifier()
	printer := &watchPrinter{
		out:      out,
		colorize: colorize,
		lifetime: time.Duration(cfg.Workflow.BannerSeconds) * time.Second,
	}

	var cache poller.Cache
	if store, storeErr := ctx.ensureStore(); storeErr == nil {
		cache = store
	}

	watchCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := poller.New(poller.Options{
		Source:   client,
		Project:  project,
		Interval: time.Duration(cfg.Workflow.StatusPollInterval) * time.Second,
		Cache:    cache,
		Logger:   ctx.ensureLogger(),
		Hooks: poller.Hooks{
			OnStatus: func(status backend.GlobalStatus) {
				printer.block(func(w io.Writer) {
					fmt.Fprintf(w, "-- %s --\n", time.Now().Format("15:04:05"))
					renderGlobalStatus(w, status, colorize)
				})
			},
			OnCompleted: func(job string) {
				printer.banner(fmt.Sprintf("Completed: %s", job))
				_ = notifier.NotifyClipCompleted(watchCtx, project, job)
			},
			OnClips: func(clips []backend.ClipState) {
				done := 0
				for _, clip := range clips {
					if clip.Status == backend.ClipStatusDone {
						done++
					}
				}
				printer.block(func(w io.Writer) {
					fmt.Fprintf(w, "Clips updated: %d/%d done\n", done, len(clips))
				})
			},
		},
	})

	if err := p.Start(watchCtx); err != nil {
		return err
	}
	<-watchCtx.Done()
	p.Stop()
	printer.block(func(w io.Writer) {
		fmt.Fprintln(w, "Watch stopped")
	})
	return nil
}
