package statecache

import (
	"context"
	"testing"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMarkCompletedDeduplicates(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first, err := store.MarkCompleted(ctx, "Video1", "clip2 (Pass 1)")
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !first {
		t.Fatal("first observation should report true")
	}

	again, err := store.MarkCompleted(ctx, "Video1", "clip2 (Pass 1)")
	if err != nil {
		t.Fatalf("MarkCompleted repeat: %v", err)
	}
	if again {
		t.Fatal("repeat observation should report false")
	}

	// The same job under another project is a distinct completion.
	other, err := store.MarkCompleted(ctx, "Video2", "clip2 (Pass 1)")
	if err != nil {
		t.Fatalf("MarkCompleted other project: %v", err)
	}
	if !other {
		t.Fatal("completion under a different project should report true")
	}
}

func TestMarkCompletedIgnoresEmptyJob(t *testing.T) {
	store := openStore(t)

	first, err := store.MarkCompleted(context.Background(), "Video1", "  ")
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if first {
		t.Fatal("blank job must never count as a completion")
	}
}

func TestCompletionsSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.MarkCompleted(ctx, "Video1", "clip5 (Pass 2)"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	first, err := reopened.MarkCompleted(ctx, "Video1", "clip5 (Pass 2)")
	if err != nil {
		t.Fatalf("MarkCompleted after reopen: %v", err)
	}
	if first {
		t.Fatal("completion recorded before restart must stay deduplicated")
	}

	jobs, err := reopened.Completions(ctx, "Video1")
	if err != nil {
		t.Fatalf("Completions: %v", err)
	}
	if len(jobs) != 1 || jobs[0] != "clip5 (Pass 2)" {
		t.Fatalf("completions = %v, want the single recorded job", jobs)
	}
}

func TestClipSnapshotRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	clips, err := store.LoadClips(ctx, "Video1")
	if err != nil {
		t.Fatalf("LoadClips: %v", err)
	}
	if clips != nil {
		t.Fatalf("clips = %v, want nil before any snapshot", clips)
	}

	want := []backend.ClipState{
		{ClipID: "clip1", Type: backend.ClipTypeNormal, Status: backend.ClipStatusPending,
			Actions: []backend.Pass{{Pass: 1, Character: "Alice", Mask: "AUTO"}}},
		{ClipID: "clip2", Type: backend.ClipTypeNoChar, Status: backend.ClipStatusDone},
	}
	if err := store.SaveClips(ctx, "Video1", want); err != nil {
		t.Fatalf("SaveClips: %v", err)
	}

	got, err := store.LoadClips(ctx, "Video1")
	if err != nil {
		t.Fatalf("LoadClips: %v", err)
	}
	if !backend.ClipsEqual(got, want) {
		t.Fatalf("clips = %+v, want %+v", got, want)
	}

	// Overwrite replaces, not appends.
	if err := store.SaveClips(ctx, "Video1", want[:1]); err != nil {
		t.Fatalf("SaveClips overwrite: %v", err)
	}
	got, err = store.LoadClips(ctx, "Video1")
	if err != nil {
		t.Fatalf("LoadClips: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("clips = %+v, want the overwritten single-clip snapshot", got)
	}
}

func TestClearProjectRemovesAllState(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.MarkCompleted(ctx, "Video1", "clip1 (Pass 1)"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := store.SaveClips(ctx, "Video1", []backend.ClipState{{ClipID: "clip1"}}); err != nil {
		t.Fatalf("SaveClips: %v", err)
	}

	if err := store.ClearProject(ctx, "Video1"); err != nil {
		t.Fatalf("ClearProject: %v", err)
	}

	first, err := store.MarkCompleted(ctx, "Video1", "clip1 (Pass 1)")
	if err != nil {
		t.Fatalf("MarkCompleted after clear: %v", err)
	}
	if !first {
		t.Fatal("cleared completion should be observable again")
	}
	clips, err := store.LoadClips(ctx, "Video1")
	if err != nil {
		t.Fatalf("LoadClips after clear: %v", err)
	}
	if clips != nil {
		t.Fatalf("clips = %v, want nil after clear", clips)
	}
}
