package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
	"github.com/parthubhe/DeepFakeStudio/internal/notifications"
)

var (
	// ErrConfirmationRequired guards destructive project-wide operations.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrPendingClips is returned by Stitch when unprocessed clips remain
	// and the caller did not force.
	ErrPendingClips = errors.New("project has unprocessed clips")
	// ErrClipNotFound is returned when queueing a clip the project does not
	// contain.
	ErrClipNotFound = errors.New("clip not found in project")
)

// API is the backend surface for job control. *backend.Client satisfies it.
type API interface {
	Project(ctx context.Context, name string) (*backend.Project, error)
	QueueClip(ctx context.Context, project string, clip backend.ClipState) error
	QueueAll(ctx context.Context, project string) (*backend.QueueAllResult, error)
	Stop(ctx context.Context) error
	ResetProject(ctx context.Context, project string) error
	Stitch(ctx context.Context, project string) (*backend.StitchResponse, error)
}

// Cleaner drops console-local cached state when a project is reset.
// *statecache.Store satisfies it.
type Cleaner interface {
	ClearProject(ctx context.Context, project string) error
}

// Orchestrator drives project-level job control: queueing work, stopping the
// worker, resetting projects, and requesting the final stitch.
type Orchestrator struct {
	api      API
	notifier notifications.Service
	cleaner  Cleaner
	logger   *slog.Logger
}

// Options configures New. Notifier and Cleaner are optional.
type Options struct {
	API      API
	Notifier notifications.Service
	Cleaner  Cleaner
	Logger   *slog.Logger
}

func New(opts Options) *Orchestrator {
	notifier := opts.Notifier
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	return &Orchestrator{
		api:      opts.API,
		notifier: notifier,
		cleaner:  opts.Cleaner,
		logger:   logging.NewComponentLogger(opts.Logger, "orchestrator"),
	}
}

// QueueOne queues a single clip by identifier. The clip's current state is
// read from the project listing so the backend receives the full clip
// profile.
func (o *Orchestrator) QueueOne(ctx context.Context, project, clipID string) error {
	proj, err := o.api.Project(ctx, project)
	if err != nil {
		return fmt.Errorf("read project %s: %w", project, err)
	}
	var clip *backend.ClipState
	for i := range proj.Clips {
		if proj.Clips[i].ClipID == clipID {
			clip = &proj.Clips[i]
			break
		}
	}
	if clip == nil {
		return fmt.Errorf("%w: %s", ErrClipNotFound, clipID)
	}

	if err := o.api.QueueClip(ctx, project, *clip); err != nil {
		o.notifyError(ctx, err, "queue clip")
		return fmt.Errorf("queue clip %s: %w", clipID, err)
	}

	o.logger.Info("clip queued",
		logging.String(logging.FieldProject, project),
		logging.String(logging.FieldClip, clipID))
	_ = o.notifier.NotifyQueueStarted(ctx, project, 1)
	return nil
}

// QueueAll queues every eligible clip of a project. When clips are missing
// saved masks the backend rejects the whole batch; the returned error lists
// each missing clip/pass exactly as the backend reported it, so the operator
// can read which masks still need drawing.
func (o *Orchestrator) QueueAll(ctx context.Context, project string) (int, error) {
	result, err := o.api.QueueAll(ctx, project)
	if err != nil {
		var missing *backend.QueueAllError
		if !errors.As(err, &missing) {
			o.notifyError(ctx, err, "queue all")
		}
		return 0, err
	}

	o.logger.Info("project queued",
		logging.String(logging.FieldProject, project),
		logging.Int("count", result.Count))
	_ = o.notifier.NotifyQueueStarted(ctx, project, result.Count)
	return result.Count, nil
}

// Stop halts the backend worker after its current pass. Already-queued work
// stays queued; stopping an idle worker is a no-op.
func (o *Orchestrator) Stop(ctx context.Context) error {
	if err := o.api.Stop(ctx); err != nil {
		return fmt.Errorf("stop processing: %w", err)
	}
	o.logger.Info("processing stop requested")
	return nil
}

// ResetProject discards a project's generated outputs and clears the
// console's cached state for it; saved masks are preserved on the backend.
// The deleted outputs are unrecoverable, so the caller must have obtained
// explicit operator confirmation.
func (o *Orchestrator) ResetProject(ctx context.Context, project string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	if err := o.api.ResetProject(ctx, project); err != nil {
		o.notifyError(ctx, err, "reset project")
		return fmt.Errorf("reset project %s: %w", project, err)
	}
	if o.cleaner != nil {
		if err := o.cleaner.ClearProject(ctx, project); err != nil {
			o.logger.Warn("clear cached state failed",
				logging.String(logging.FieldProject, project), logging.Error(err))
		}
	}
	o.logger.Info("project reset", logging.String(logging.FieldProject, project))
	return nil
}

// Stitch concatenates the project's processed clips into the final video and
// returns its URL. Unprocessed clips are substituted with their originals by
// the backend, so by default unfinished projects are refused; force
// overrides after the operator has seen which clips are pending.
func (o *Orchestrator) Stitch(ctx context.Context, project string, force bool) (string, error) {
	if !force {
		proj, err := o.api.Project(ctx, project)
		if err != nil {
			return "", fmt.Errorf("read project %s: %w", project, err)
		}
		if pending := proj.PendingClips(); len(pending) > 0 {
			return "", fmt.Errorf("%w: %s", ErrPendingClips, strings.Join(pending, ", "))
		}
	}

	resp, err := o.api.Stitch(ctx, project)
	if err != nil {
		o.notifyError(ctx, err, "stitch")
		return "", fmt.Errorf("stitch project %s: %w", project, err)
	}

	o.logger.Info("stitch complete",
		logging.String(logging.FieldProject, project),
		logging.String("url", resp.URL))
	_ = o.notifier.NotifyStitchReady(ctx, project, resp.URL)
	return resp.URL, nil
}

func (o *Orchestrator) notifyError(ctx context.Context, err error, label string) {
	if notifyErr := o.notifier.NotifyError(ctx, err, label); notifyErr != nil {
		o.logger.Warn("notification failed", logging.Error(notifyErr))
	}
}
