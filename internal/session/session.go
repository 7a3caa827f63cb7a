package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/parthubhe/DeepFakeStudio/internal/backend"
	"github.com/parthubhe/DeepFakeStudio/internal/logging"
	"github.com/parthubhe/DeepFakeStudio/internal/mask"
)

// State is the lifecycle position of an editor session.
type State int

const (
	StateClosed State = iota
	StateFrameLoading
	StateReady
	StateSubmitting
)

func (s State) String() string {
	switch s {
	case StateFrameLoading:
		return "frame-loading"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	default:
		return "closed"
	}
}

var (
	// ErrNotReady is returned when a transition is attempted outside Ready.
	ErrNotReady = errors.New("session is not ready")
	// ErrUnknownPass is returned when switching to a pass the clip does not have.
	ErrUnknownPass = errors.New("pass not present in clip actions")
	// ErrReadOnlyClip is returned for mutations on NoChar clips.
	ErrReadOnlyClip = errors.New("clip is read-only in the editor")
	// ErrConfirmationRequired guards destructive operations.
	ErrConfirmationRequired = errors.New("confirmation required")
	// ErrClosed is returned when the session has already been closed.
	ErrClosed = errors.New("session is closed")
)

// API is the backend surface the session needs. *backend.Client satisfies it.
type API interface {
	Frame(ctx context.Context, project, clip string, frame int) (*backend.FrameResponse, error)
	LoadMask(ctx context.Context, project, clip string, pass int) (mask.PointSet, error)
	SaveMask(ctx context.Context, project, clip string, pass int, points mask.PointSet) error
	ResetMask(ctx context.Context, project, clip string, pass int) error
	QueueClip(ctx context.Context, project string, clip backend.ClipState) error
}

// Options configures Open.
type Options struct {
	API      API
	Project  string
	Clip     backend.ClipState
	StateDir string
	Logger   *slog.Logger
}

// Session is the multi-pass mask editing state machine for one clip. At most
// one session exists at a time; an editor lock file enforces the invariant
// across console processes.
type Session struct {
	mu sync.Mutex

	id      string
	api     API
	project string
	clip    backend.ClipState
	logger  *slog.Logger
	lock    *editorLock

	state      State
	activePass int
	frameIndex int
	frameURL   string
	points     mask.PointSet
}

// Open creates a session for a clip, acquires the editor lock, and performs
// the initial frame fetch and pass-1 mask load concurrently. Frame fetch
// failure is non-fatal: the session still reaches Ready with no frame URL.
// Mask-load failure resolves to an empty point set and is not surfaced.
func Open(ctx context.Context, opts Options) (*Session, error) {
	if opts.API == nil {
		return nil, errors.New("session: API is required")
	}

	lock, err := acquireEditorLock(opts.StateDir)
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:         uuid.New().String(),
		api:        opts.API,
		project:    opts.Project,
		clip:       opts.Clip,
		logger:     logging.NewComponentLogger(opts.Logger, "session"),
		lock:       lock,
		state:      StateFrameLoading,
		activePass: 1,
		frameIndex: 0,
		points:     mask.NewPointSet(),
	}
	s.logger = s.logger.With(
		logging.String(logging.FieldSession, s.id),
		logging.String(logging.FieldProject, s.project),
		logging.String(logging.FieldClip, s.clip.ClipID),
	)

	var (
		wg       sync.WaitGroup
		frameURL string
		loaded   mask.PointSet
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		frameURL = s.fetchFrameURL(ctx, 0)
	}()
	go func() {
		defer wg.Done()
		loaded = s.loadMaskOrEmpty(ctx, 1)
	}()
	wg.Wait()

	s.mu.Lock()
	s.frameURL = frameURL
	s.points = loaded
	s.state = StateReady
	s.mu.Unlock()

	s.logger.Info("session opened",
		logging.Int(logging.FieldPass, 1),
		logging.Int("points", loaded.Len()),
		logging.Bool("frame_loaded", frameURL != ""))
	return s, nil
}

// ID returns the session identifier used in logs and the editor lock.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Clip returns the clip under edit.
func (s *Session) Clip() backend.ClipState { return s.clip }

// ActivePass returns the 1-based pass currently edited.
func (s *Session) ActivePass() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activePass
}

// FrameIndex returns the currently displayed frame index.
func (s *Session) FrameIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameIndex
}

// FrameURL returns the backend-relative URL of the current frame, or empty
// while loading or after a failed fetch.
func (s *Session) FrameURL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frameURL
}

// Points returns a copy of the active pass's point set.
func (s *Session) Points() mask.PointSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points.Clone()
}

// AddPoint appends a point to the active pass. Points are accepted while the
// frame is still loading; they are defined against native resolution, not the
// image. The updated set is returned for synchronous redraw.
func (s *Session) AddPoint(label mask.Label, p mask.Point) (mask.PointSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return mask.PointSet{}, ErrClosed
	}
	if s.state == StateSubmitting {
		return mask.PointSet{}, ErrNotReady
	}
	if !s.clip.Editable() {
		return mask.PointSet{}, ErrReadOnlyClip
	}
	s.points.Add(label, p)
	return s.points.Clone(), nil
}

// JumpToFrame re-fetches the background frame at a new index. Valid only in
// Ready. Points are untouched: they live in native pixel space, which is
// frame-index independent, so the operator may carry marks across frames.
func (s *Session) JumpToFrame(ctx context.Context, index int) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	s.state = StateFrameLoading
	s.frameIndex = index
	s.frameURL = ""
	s.mu.Unlock()

	url := s.fetchFrameURL(ctx, index)

	s.mu.Lock()
	s.frameURL = url
	s.state = StateReady
	s.mu.Unlock()
	return nil
}

// SwitchPass runs the awaited pass-change pipeline: persist the current
// pass's points, clear the visible set, advance the active pass, then load
// the target pass's saved mask. The clear happens before the load so the new
// pass's view can never show the previous pass's marks, and the save fully
// completes before the load so a late save response cannot overwrite the
// loaded result. A save failure aborts the switch and leaves the session on
// the current pass.
func (s *Session) SwitchPass(ctx context.Context, newPass int) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	if !s.clip.Editable() {
		s.mu.Unlock()
		return ErrReadOnlyClip
	}
	if !s.clip.HasPass(newPass) {
		s.mu.Unlock()
		return fmt.Errorf("%w: pass %d", ErrUnknownPass, newPass)
	}
	currentPass := s.activePass
	toSave := s.points.Clone()
	s.mu.Unlock()

	if newPass == currentPass {
		return nil
	}

	if err := s.api.SaveMask(ctx, s.project, s.clip.ClipID, currentPass, toSave); err != nil {
		return fmt.Errorf("save mask for pass %d: %w", currentPass, err)
	}

	s.mu.Lock()
	s.points = mask.NewPointSet()
	s.activePass = newPass
	s.mu.Unlock()

	loaded := s.loadMaskOrEmpty(ctx, newPass)

	s.mu.Lock()
	// Only install the load result if the session is still on the target
	// pass; a stale response after another transition is discarded.
	if s.activePass == newPass && s.state != StateClosed {
		s.points = loaded
	}
	s.mu.Unlock()

	s.logger.Info("switched pass",
		logging.Int("from", currentPass),
		logging.Int("to", newPass),
		logging.Int("points", loaded.Len()))
	return nil
}

// SaveProgress persists the active pass's points without changing any other
// state. Saving the same points twice is a no-op in effect.
func (s *Session) SaveProgress(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	if !s.clip.Editable() {
		s.mu.Unlock()
		return ErrReadOnlyClip
	}
	pass := s.activePass
	points := s.points.Clone()
	s.mu.Unlock()

	if err := s.api.SaveMask(ctx, s.project, s.clip.ClipID, pass, points); err != nil {
		return fmt.Errorf("save mask for pass %d: %w", pass, err)
	}
	s.logger.Info("saved progress", logging.Int(logging.FieldPass, pass), logging.Int("points", points.Len()))
	return nil
}

// ResetPass discards the persisted mask for the active pass and clears the
// local points. Destructive and unrecoverable: the caller must have obtained
// explicit operator confirmation.
func (s *Session) ResetPass(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	if !s.clip.Editable() {
		s.mu.Unlock()
		return ErrReadOnlyClip
	}
	pass := s.activePass
	s.mu.Unlock()

	if err := s.api.ResetMask(ctx, s.project, s.clip.ClipID, pass); err != nil {
		return fmt.Errorf("reset mask for pass %d: %w", pass, err)
	}

	s.mu.Lock()
	s.points = mask.NewPointSet()
	s.mu.Unlock()

	s.logger.Info("reset pass", logging.Int(logging.FieldPass, pass))
	return nil
}

// Submit persists the active pass's points, queues the whole clip (the
// backend processes all passes of a clip together), and closes the session.
// A failure at either step aborts the transition and leaves the session
// Ready so the operator can retry.
func (s *Session) Submit(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}
	if !s.clip.Editable() {
		s.mu.Unlock()
		return ErrReadOnlyClip
	}
	s.state = StateSubmitting
	pass := s.activePass
	points := s.points.Clone()
	s.mu.Unlock()

	fail := func(err error) error {
		s.mu.Lock()
		s.state = StateReady
		s.mu.Unlock()
		return err
	}

	if err := s.api.SaveMask(ctx, s.project, s.clip.ClipID, pass, points); err != nil {
		return fail(fmt.Errorf("save mask for pass %d: %w", pass, err))
	}
	if err := s.api.QueueClip(ctx, s.project, s.clip); err != nil {
		return fail(fmt.Errorf("queue clip %s: %w", s.clip.ClipID, err))
	}

	s.closeLocked()
	s.logger.Info("clip submitted", logging.Int(logging.FieldPass, pass))
	return nil
}

// Close discards in-memory points without persisting and releases the editor
// lock. Server state is untouched, so no confirmation is required.
func (s *Session) Close() {
	s.closeLocked()
	s.logger.Info("session closed")
}

func (s *Session) closeLocked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return
	}
	s.state = StateClosed
	s.points = mask.NewPointSet()
	if s.lock != nil {
		_ = s.lock.release()
		s.lock = nil
	}
}

func (s *Session) fetchFrameURL(ctx context.Context, index int) string {
	resp, err := s.api.Frame(ctx, s.project, s.clip.ClipID, index)
	if err != nil {
		s.logger.Warn("frame fetch failed", logging.Int("frame", index), logging.Error(err))
		return ""
	}
	return resp.URL
}

func (s *Session) loadMaskOrEmpty(ctx context.Context, pass int) mask.PointSet {
	loaded, err := s.api.LoadMask(ctx, s.project, s.clip.ClipID, pass)
	if err != nil {
		if !errors.Is(err, backend.ErrNotFound) {
			s.logger.Warn("mask load failed", logging.Int(logging.FieldPass, pass), logging.Error(err))
		}
		return mask.NewPointSet()
	}
	return loaded.Normalized()
}
