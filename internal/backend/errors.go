package backend

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnauthorized indicates the backend rejected the access token. The
	// console routes to its unauthenticated state rather than surfacing the
	// individual request failure.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound indicates the requested resource does not exist. On mask
	// load paths this means "no prior mask" and is not an operator-facing
	// error.
	ErrNotFound = errors.New("not found")
	// ErrTransient tags read-path failures that the next poll or retry
	// absorbs silently.
	ErrTransient = errors.New("transient failure")
)

// QueueAllError is the structured partial failure returned when queueing a
// whole project while some clips still lack saved masks. The missing entries
// must reach the operator verbatim, never summarized.
type QueueAllError struct {
	Message string
	Missing []string
}

func (e *QueueAllError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// statusError maps an HTTP failure to the package error taxonomy.
func statusError(method, path string, code int, body string) error {
	switch code {
	case 401, 403:
		return ErrUnauthorized
	case 404:
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	detail := strings.TrimSpace(body)
	if code >= 500 {
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrTransient, method, path, code, detail)
	}
	return fmt.Errorf("%s %s returned %d: %s", method, path, code, detail)
}
