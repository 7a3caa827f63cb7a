package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
)

const defaultInterval = time.Second

// Source is the backend surface the poller reads. *backend.Client satisfies
// it.
type Source interface {
	Status(ctx context.Context) (*backend.GlobalStatus, error)
	Project(ctx context.Context, name string) (*backend.Project, error)
}

// Cache persists poller observations across restarts. *statecache.Store
// satisfies it; a nil cache degrades to in-memory deduplication.
type Cache interface {
	MarkCompleted(ctx context.Context, project, job string) (bool, error)
	SaveClips(ctx context.Context, project string, clips []backend.ClipState) error
}

// Hooks are invoked from the polling goroutine, never concurrently with each
// other. All are optional.
type Hooks struct {
	// OnStatus fires when the global status payload differs structurally
	// from the previous one.
	OnStatus func(status backend.GlobalStatus)
	// OnClips fires when the project's clip listing differs structurally
	// from the previous one.
	OnClips func(clips []backend.ClipState)
	// OnCompleted fires exactly once per distinct completion marker value.
	OnCompleted func(job string)
}

// Options configures New.
type Options struct {
	Source   Source
	Project  string
	Interval time.Duration
	Hooks    Hooks
	Cache    Cache
	Logger   *slog.Logger
}

// Poller periodically reads the backend's global status and the watched
// project's clip listing, invoking hooks only on observable change. Read
// failures are logged and otherwise silent: the next tick retries and stale
// data remains on display.
type Poller struct {
	source   Source
	project  string
	interval time.Duration
	hooks    Hooks
	cache    Cache
	logger   *slog.Logger

	mu         sync.Mutex
	cancel     context.CancelFunc
	done       chan struct{}
	lastStatus *backend.GlobalStatus
	lastClips  []backend.ClipState
	haveClips  bool
	seen       map[string]struct{}
}

// New builds a stopped poller. Call Start to begin ticking.
func New(opts Options) *Poller {
	interval := opts.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		source:   opts.Source,
		project:  opts.Project,
		interval: interval,
		hooks:    opts.Hooks,
		cache:    opts.Cache,
		logger: logging.NewComponentLogger(opts.Logger, "poller").With(
			logging.String(logging.FieldProject, opts.Project)),
		seen: make(map[string]struct{}),
	}
}

// Start begins polling until the context is cancelled or Stop is called.
// The first poll happens immediately rather than one interval in.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return errors.New("poller already started")
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(runCtx)
	return nil
}

// Stop cancels polling and waits for the polling goroutine to exit. Safe to
// call multiple times and on a never-started poller.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Status returns the most recently observed global status, or false when no
// successful read has happened yet.
func (p *Poller) Status() (backend.GlobalStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.lastStatus == nil {
		return backend.GlobalStatus{}, false
	}
	return *p.lastStatus, true
}

// Clips returns the most recently observed clip listing, or false when no
// successful read has happened yet.
func (p *Poller) Clips() ([]backend.ClipState, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.haveClips {
		return nil, false
	}
	out := make([]backend.ClipState, len(p.lastClips))
	copy(out, p.lastClips)
	return out, true
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Tick(ctx)
		}
	}
}

// Tick performs one poll cycle. Exposed so command surfaces can force an
// immediate refresh after a mutation instead of waiting out the interval.
func (p *Poller) Tick(ctx context.Context) {
	p.pollStatus(ctx)
	p.pollClips(ctx)
}

func (p *Poller) pollStatus(ctx context.Context) {
	status, err := p.source.Status(ctx)
	if err != nil {
		p.logger.Debug("status poll failed", logging.Error(err))
		return
	}

	p.mu.Lock()
	changed := p.lastStatus == nil || !p.lastStatus.Equal(*status)
	if changed {
		held := *status
		p.lastStatus = &held
	}
	p.mu.Unlock()

	if changed && p.hooks.OnStatus != nil {
		p.hooks.OnStatus(*status)
	}
	p.observeCompletion(ctx, status.LastCompleted)
}

// observeCompletion fires the completion hook exactly once per distinct
// marker value. The dedup is keyed on the value itself, not on transitions,
// so a marker observed on every tick (or re-observed after a restart with a
// persistent cache) never fires twice, and a missed intermediate transition
// still fires for the value eventually seen.
func (p *Poller) observeCompletion(ctx context.Context, job string) {
	if job == "" {
		return
	}

	first := false
	if p.cache != nil {
		var err error
		first, err = p.cache.MarkCompleted(ctx, p.project, job)
		if err != nil {
			p.logger.Warn("record completion failed", logging.Error(err))
			return
		}
	} else {
		p.mu.Lock()
		if _, ok := p.seen[job]; !ok {
			p.seen[job] = struct{}{}
			first = true
		}
		p.mu.Unlock()
	}

	if first {
		p.logger.Info("job completed", logging.String("job", job))
		if p.hooks.OnCompleted != nil {
			p.hooks.OnCompleted(job)
		}
	}
}

func (p *Poller) pollClips(ctx context.Context) {
	if p.project == "" {
		return
	}
	project, err := p.source.Project(ctx, p.project)
	if err != nil {
		p.logger.Debug("clip poll failed", logging.Error(err))
		return
	}

	p.mu.Lock()
	changed := !p.haveClips || !backend.ClipsEqual(p.lastClips, project.Clips)
	if changed {
		p.lastClips = make([]backend.ClipState, len(project.Clips))
		copy(p.lastClips, project.Clips)
		p.haveClips = true
	}
	p.mu.Unlock()

	if !changed {
		return
	}
	if p.cache != nil {
		if err := p.cache.SaveClips(ctx, p.project, project.Clips); err != nil {
			p.logger.Warn("snapshot clips failed", logging.Error(err))
		}
	}
	if p.hooks.OnClips != nil {
		p.hooks.OnClips(project.Clips)
	}
}
