package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrEditorBusy is returned when another console process already holds an
// editor session.
var ErrEditorBusy = errors.New("another editor session is active")

const lockFileName = "editor.lock"

// processSlot backs the lock when no state directory is configured. It
// cannot see other processes, so the invariant shrinks to process scope.
var processSlot = struct {
	mu   sync.Mutex
	held bool
}{}

type editorLock struct {
	fl    *flock.Flock
	local bool
}

func acquireEditorLock(stateDir string) (*editorLock, error) {
	if stateDir == "" {
		processSlot.mu.Lock()
		defer processSlot.mu.Unlock()
		if processSlot.held {
			return nil, ErrEditorBusy
		}
		processSlot.held = true
		return &editorLock{local: true}, nil
	}
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	fl := flock.New(filepath.Join(stateDir, lockFileName))
	locked, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire editor lock: %w", err)
	}
	if !locked {
		return nil, ErrEditorBusy
	}
	return &editorLock{fl: fl}, nil
}

func (l *editorLock) release() error {
	if l == nil {
		return nil
	}
	if l.local {
		processSlot.mu.Lock()
		processSlot.held = false
		processSlot.mu.Unlock()
		return nil
	}
	if l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}
