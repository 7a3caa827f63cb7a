// Package backend implements the HTTP client for the processing backend.
//
// Every operation is a single request/response round trip with a context.
// Failures are classified into the taxonomy the console relies on:
// ErrUnauthorized routes the whole application to its unauthenticated state,
// ErrNotFound marks missing resources (an empty prior mask on load paths),
// and ErrTransient tags read failures the next poll absorbs. Write failures
// surface as plain errors the caller must show to the operator.
package backend
