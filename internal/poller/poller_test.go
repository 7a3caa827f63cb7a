package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
)

type fakeSource struct {
	mu       sync.Mutex
	status   backend.GlobalStatus
	clips    []backend.ClipState
	statErr  error
	projErr  error
	statHits int
}

func (f *fakeSource) Status(context.Context) (*backend.GlobalStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statHits++
	if f.statErr != nil {
		return nil, f.statErr
	}
	held := f.status
	return &held, nil
}

func (f *fakeSource) Project(context.Context, string) (*backend.Project, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.projErr != nil {
		return nil, f.projErr
	}
	return &backend.Project{VideoID: "Video1", Clips: f.clips}, nil
}

func (f *fakeSource) set(status backend.GlobalStatus) {
	f.mu.Lock()
	f.status = status
	f.mu.Unlock()
}

type recorder struct {
	mu        sync.Mutex
	statuses  []backend.GlobalStatus
	clipSets  [][]backend.ClipState
	completed []string
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		OnStatus: func(s backend.GlobalStatus) {
			r.mu.Lock()
			r.statuses = append(r.statuses, s)
			r.mu.Unlock()
		},
		OnClips: func(c []backend.ClipState) {
			r.mu.Lock()
			r.clipSets = append(r.clipSets, c)
			r.mu.Unlock()
		},
		OnCompleted: func(job string) {
			r.mu.Lock()
			r.completed = append(r.completed, job)
			r.mu.Unlock()
		},
	}
}

func (r *recorder) counts() (statuses, clips, completed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.statuses), len(r.clipSets), len(r.completed)
}

func newTestPoller(src *fakeSource, rec *recorder) *Poller {
	return New(Options{
		Source:  src,
		Project: "Video1",
		Hooks:   rec.hooks(),
		Logger:  logging.NewNop(),
	})
}

func TestIdenticalPayloadsFireNoHooks(t *testing.T) {
	src := &fakeSource{
		status: backend.GlobalStatus{IsProcessing: true, CurrentClip: "clip1", Queue: []string{"clip2"}},
		clips:  []backend.ClipState{{ClipID: "clip1", Status: backend.ClipStatusPending}},
	}
	rec := &recorder{}
	p := newTestPoller(src, rec)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		p.Tick(ctx)
	}

	statuses, clips, _ := rec.counts()
	if statuses != 1 {
		t.Fatalf("status hook fired %d times, want 1", statuses)
	}
	if clips != 1 {
		t.Fatalf("clips hook fired %d times, want 1", clips)
	}
}

func TestStatusChangeFiresHook(t *testing.T) {
	src := &fakeSource{status: backend.GlobalStatus{IsProcessing: true, ProcessedClips: 1}}
	rec := &recorder{}
	p := newTestPoller(src, rec)
	ctx := context.Background()

	p.Tick(ctx)
	src.set(backend.GlobalStatus{IsProcessing: true, ProcessedClips: 2})
	p.Tick(ctx)

	statuses, _, _ := rec.counts()
	if statuses != 2 {
		t.Fatalf("status hook fired %d times, want 2", statuses)
	}
	got, ok := p.Status()
	if !ok || got.ProcessedClips != 2 {
		t.Fatalf("held status = %+v (ok=%v), want the latest payload", got, ok)
	}
}

func TestCompletionFiresOncePerMarkerValue(t *testing.T) {
	src := &fakeSource{status: backend.GlobalStatus{IsProcessing: true}}
	rec := &recorder{}
	p := newTestPoller(src, rec)
	ctx := context.Background()

	// Marker absent: nothing to announce.
	p.Tick(ctx)
	// Marker appears and is then re-observed on every subsequent tick.
	src.set(backend.GlobalStatus{IsProcessing: true, LastCompleted: "clip2 (Pass 1)"})
	p.Tick(ctx)
	p.Tick(ctx)
	p.Tick(ctx)

	_, _, completed := rec.counts()
	if completed != 1 {
		t.Fatalf("completion hook fired %d times, want exactly 1", completed)
	}
	if rec.completed[0] != "clip2 (Pass 1)" {
		t.Fatalf("completed job = %q, want the marker value", rec.completed[0])
	}
}

func TestCompletionDedupIsValueKeyed(t *testing.T) {
	src := &fakeSource{}
	rec := &recorder{}
	p := newTestPoller(src, rec)
	ctx := context.Background()

	src.set(backend.GlobalStatus{LastCompleted: "clip1 (Pass 1)"})
	p.Tick(ctx)
	src.set(backend.GlobalStatus{LastCompleted: "clip2 (Pass 1)"})
	p.Tick(ctx)
	// A stale payload resurfacing the first marker must not re-announce it.
	src.set(backend.GlobalStatus{LastCompleted: "clip1 (Pass 1)"})
	p.Tick(ctx)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.completed) != 2 {
		t.Fatalf("completed = %v, want the two distinct markers", rec.completed)
	}
}

type memCache struct {
	mu    sync.Mutex
	seen  map[string]struct{}
	clips map[string][]backend.ClipState
}

func newMemCache() *memCache {
	return &memCache{seen: make(map[string]struct{}), clips: make(map[string][]backend.ClipState)}
}

func (c *memCache) MarkCompleted(_ context.Context, project, job string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := project + "\x00" + job
	if _, ok := c.seen[key]; ok {
		return false, nil
	}
	c.seen[key] = struct{}{}
	return true, nil
}

func (c *memCache) SaveClips(_ context.Context, project string, clips []backend.ClipState) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clips[project] = clips
	return nil
}

func TestCompletionDedupSurvivesPollerRestart(t *testing.T) {
	cache := newMemCache()
	src := &fakeSource{status: backend.GlobalStatus{LastCompleted: "clip3 (Pass 2)"}}
	ctx := context.Background()

	rec1 := &recorder{}
	first := New(Options{Source: src, Project: "Video1", Hooks: rec1.hooks(), Cache: cache, Logger: logging.NewNop()})
	first.Tick(ctx)

	// A fresh poller sharing the cache models a console restart.
	rec2 := &recorder{}
	second := New(Options{Source: src, Project: "Video1", Hooks: rec2.hooks(), Cache: cache, Logger: logging.NewNop()})
	second.Tick(ctx)

	if _, _, n := rec1.counts(); n != 1 {
		t.Fatalf("first poller announced %d completions, want 1", n)
	}
	if _, _, n := rec2.counts(); n != 0 {
		t.Fatalf("restarted poller announced %d completions, want 0", n)
	}
	if cache.clips["Video1"] == nil {
		t.Fatal("expected the clip snapshot to be cached")
	}
}

func TestReadErrorsAreSilent(t *testing.T) {
	src := &fakeSource{
		status: backend.GlobalStatus{IsProcessing: true},
		clips:  []backend.ClipState{{ClipID: "clip1"}},
	}
	rec := &recorder{}
	p := newTestPoller(src, rec)
	ctx := context.Background()

	p.Tick(ctx)

	src.mu.Lock()
	src.statErr = errors.New("connection refused")
	src.projErr = errors.New("connection refused")
	src.mu.Unlock()
	p.Tick(ctx)
	p.Tick(ctx)

	statuses, clips, _ := rec.counts()
	if statuses != 1 || clips != 1 {
		t.Fatalf("hooks fired statuses=%d clips=%d during outage, want 1/1", statuses, clips)
	}
	if got, ok := p.Status(); !ok || !got.IsProcessing {
		t.Fatalf("held status = %+v (ok=%v), want the pre-outage payload retained", got, ok)
	}
	if got, ok := p.Clips(); !ok || len(got) != 1 {
		t.Fatalf("held clips = %v (ok=%v), want the pre-outage listing retained", got, ok)
	}
}

func TestStartStopLifecycle(t *testing.T) {
	src := &fakeSource{}
	p := New(Options{
		Source:   src,
		Project:  "Video1",
		Interval: 5 * time.Millisecond,
		Logger:   logging.NewNop(),
	})

	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := p.Start(context.Background()); err == nil {
		t.Fatal("second Start should fail while running")
	}

	deadline := time.After(2 * time.Second)
	for {
		src.mu.Lock()
		hits := src.statHits
		src.mu.Unlock()
		if hits >= 2 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("poller never ticked")
		case <-time.After(time.Millisecond):
		}
	}

	p.Stop()
	src.mu.Lock()
	after := src.statHits
	src.mu.Unlock()
	time.Sleep(20 * time.Millisecond)
	src.mu.Lock()
	final := src.statHits
	src.mu.Unlock()
	if final != after {
		t.Fatalf("poller ticked after Stop (%d -> %d)", after, final)
	}

	// Stopped poller can be started again.
	if err := p.Start(context.Background()); err != nil {
		t.Fatalf("restart: %v", err)
	}
	p.Stop()
}
