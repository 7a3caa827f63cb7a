package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
)

type fakeAPI struct {
	project    *backend.Project
	projectErr error
	queueErr   error
	queueAll   *backend.QueueAllResult
	allErr     error
	stitch     *backend.StitchResponse
	stitchErr  error

	queued     []string
	stops      int
	resets     []string
	stitchHits int
}

func (f *fakeAPI) Project(context.Context, string) (*backend.Project, error) {
	if f.projectErr != nil {
		return nil, f.projectErr
	}
	return f.project, nil
}

func (f *fakeAPI) QueueClip(_ context.Context, _ string, clip backend.ClipState) error {
	if f.queueErr != nil {
		return f.queueErr
	}
	f.queued = append(f.queued, clip.ClipID)
	return nil
}

func (f *fakeAPI) QueueAll(context.Context, string) (*backend.QueueAllResult, error) {
	if f.allErr != nil {
		return nil, f.allErr
	}
	return f.queueAll, nil
}

func (f *fakeAPI) Stop(context.Context) error {
	f.stops++
	return nil
}

func (f *fakeAPI) ResetProject(_ context.Context, project string) error {
	f.resets = append(f.resets, project)
	return nil
}

func (f *fakeAPI) Stitch(context.Context, string) (*backend.StitchResponse, error) {
	f.stitchHits++
	if f.stitchErr != nil {
		return nil, f.stitchErr
	}
	return f.stitch, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	queues  []int
	stitch  []string
	errored []string
}

func (n *fakeNotifier) NotifyQueueStarted(_ context.Context, _ string, count int) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.queues = append(n.queues, count)
	return nil
}

func (n *fakeNotifier) NotifyClipCompleted(context.Context, string, string) error { return nil }

func (n *fakeNotifier) NotifyStitchReady(_ context.Context, _ string, url string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stitch = append(n.stitch, url)
	return nil
}

func (n *fakeNotifier) NotifyError(_ context.Context, _ error, label string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errored = append(n.errored, label)
	return nil
}

func (n *fakeNotifier) TestNotification(context.Context) error { return nil }

type fakeCleaner struct {
	cleared []string
}

func (c *fakeCleaner) ClearProject(_ context.Context, project string) error {
	c.cleared = append(c.cleared, project)
	return nil
}

func sampleProject(statuses ...backend.ClipStatus) *backend.Project {
	proj := &backend.Project{VideoID: "Video1"}
	for i, status := range statuses {
		proj.Clips = append(proj.Clips, backend.ClipState{
			ClipID: "clip" + string(rune('1'+i)),
			Type:   backend.ClipTypeNormal,
			Status: status,
			Actions: []backend.Pass{
				{Pass: 1, Character: "Alice", Mask: "AUTO"},
			},
		})
	}
	return proj
}

func newOrchestrator(api *fakeAPI, notifier *fakeNotifier, cleaner *fakeCleaner) *Orchestrator {
	opts := Options{API: api, Logger: logging.NewNop()}
	if notifier != nil {
		opts.Notifier = notifier
	}
	if cleaner != nil {
		opts.Cleaner = cleaner
	}
	return New(opts)
}

func TestQueueOneSendsFullClipProfile(t *testing.T) {
	api := &fakeAPI{project: sampleProject(backend.ClipStatusPending, backend.ClipStatusPending)}
	notifier := &fakeNotifier{}
	o := newOrchestrator(api, notifier, nil)

	if err := o.QueueOne(context.Background(), "Video1", "clip2"); err != nil {
		t.Fatalf("QueueOne: %v", err)
	}
	if len(api.queued) != 1 || api.queued[0] != "clip2" {
		t.Fatalf("queued = %v, want [clip2]", api.queued)
	}
	if len(notifier.queues) != 1 || notifier.queues[0] != 1 {
		t.Fatalf("queue notifications = %v, want [1]", notifier.queues)
	}
}

func TestQueueOneUnknownClip(t *testing.T) {
	api := &fakeAPI{project: sampleProject(backend.ClipStatusPending)}
	o := newOrchestrator(api, nil, nil)

	err := o.QueueOne(context.Background(), "Video1", "clip9")
	if !errors.Is(err, ErrClipNotFound) {
		t.Fatalf("err = %v, want ErrClipNotFound", err)
	}
	if len(api.queued) != 0 {
		t.Fatalf("queued = %v, want nothing", api.queued)
	}
}

func TestQueueAllReportsMissingMasksVerbatim(t *testing.T) {
	missing := &backend.QueueAllError{
		Message: "masks missing",
		Missing: []string{"clip3 (Pass 1)", "clip7 (Pass 2)"},
	}
	api := &fakeAPI{allErr: missing}
	notifier := &fakeNotifier{}
	o := newOrchestrator(api, notifier, nil)

	_, err := o.QueueAll(context.Background(), "Video1")
	var got *backend.QueueAllError
	if !errors.As(err, &got) {
		t.Fatalf("err = %v, want QueueAllError", err)
	}
	if len(got.Missing) != 2 || got.Missing[0] != "clip3 (Pass 1)" || got.Missing[1] != "clip7 (Pass 2)" {
		t.Fatalf("missing = %v, want the backend's exact entries", got.Missing)
	}
	// A rejected batch is operator feedback, not a system fault.
	if len(notifier.errored) != 0 {
		t.Fatalf("error notifications = %v, want none", notifier.errored)
	}
	if len(notifier.queues) != 0 {
		t.Fatalf("queue notifications = %v, want none", notifier.queues)
	}
}

func TestQueueAllSuccessNotifiesCount(t *testing.T) {
	api := &fakeAPI{queueAll: &backend.QueueAllResult{Status: "ok", Count: 4}}
	notifier := &fakeNotifier{}
	o := newOrchestrator(api, notifier, nil)

	count, err := o.QueueAll(context.Background(), "Video1")
	if err != nil {
		t.Fatalf("QueueAll: %v", err)
	}
	if count != 4 {
		t.Fatalf("count = %d, want 4", count)
	}
	if len(notifier.queues) != 1 || notifier.queues[0] != 4 {
		t.Fatalf("queue notifications = %v, want [4]", notifier.queues)
	}
}

func TestResetProjectRequiresConfirmation(t *testing.T) {
	api := &fakeAPI{}
	cleaner := &fakeCleaner{}
	o := newOrchestrator(api, nil, cleaner)
	ctx := context.Background()

	if err := o.ResetProject(ctx, "Video1", false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("err = %v, want ErrConfirmationRequired", err)
	}
	if len(api.resets) != 0 {
		t.Fatal("reset reached the backend without confirmation")
	}

	if err := o.ResetProject(ctx, "Video1", true); err != nil {
		t.Fatalf("ResetProject: %v", err)
	}
	if len(api.resets) != 1 || api.resets[0] != "Video1" {
		t.Fatalf("resets = %v, want [Video1]", api.resets)
	}
	if len(cleaner.cleared) != 1 || cleaner.cleared[0] != "Video1" {
		t.Fatalf("cleared = %v, want the cached state dropped", cleaner.cleared)
	}
}

func TestStitchRefusesPendingClipsUnlessForced(t *testing.T) {
	api := &fakeAPI{
		project: sampleProject(backend.ClipStatusDone, backend.ClipStatusPending),
		stitch:  &backend.StitchResponse{URL: "/static/Video1/final.mp4"},
	}
	notifier := &fakeNotifier{}
	o := newOrchestrator(api, notifier, nil)
	ctx := context.Background()

	_, err := o.Stitch(ctx, "Video1", false)
	if !errors.Is(err, ErrPendingClips) {
		t.Fatalf("err = %v, want ErrPendingClips", err)
	}
	if !strings.Contains(err.Error(), "clip2") {
		t.Fatalf("err = %v, want the pending clip named", err)
	}
	if api.stitchHits != 0 {
		t.Fatal("stitch reached the backend despite pending clips")
	}

	url, err := o.Stitch(ctx, "Video1", true)
	if err != nil {
		t.Fatalf("forced Stitch: %v", err)
	}
	if url != "/static/Video1/final.mp4" {
		t.Fatalf("url = %q", url)
	}
	if len(notifier.stitch) != 1 {
		t.Fatalf("stitch notifications = %v, want one", notifier.stitch)
	}
}

func TestStitchCleanProjectNeedsNoForce(t *testing.T) {
	api := &fakeAPI{
		project: sampleProject(backend.ClipStatusDone, backend.ClipStatusDone),
		stitch:  &backend.StitchResponse{URL: "/static/Video1/final.mp4"},
	}
	o := newOrchestrator(api, nil, nil)

	url, err := o.Stitch(context.Background(), "Video1", false)
	if err != nil {
		t.Fatalf("Stitch: %v", err)
	}
	if url == "" {
		t.Fatal("expected a stitch URL")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	api := &fakeAPI{}
	o := newOrchestrator(api, nil, nil)
	ctx := context.Background()

	if err := o.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := o.Stop(ctx); err != nil {
		t.Fatalf("second Stop: %v", err)
	}
	if api.stops != 2 {
		t.Fatalf("stops = %d, want 2", api.stops)
	}
}
