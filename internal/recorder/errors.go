// Package recorder implements the recording coordinator: the authoritative
// state machine for which session is live per tenant, its action log, and
// the code generator that compiles finished logs into tools.
package recorder

import "errors"

// Error taxonomy surfaced to callers. Coordinator-level failures are always
// structured; transient poll/probe failures are handled by the callers'
// retry loops and never reach these.
var (
	// ErrConflict means a start was requested while a recording is already
	// active for the tenant.
	ErrConflict = errors.New("recording already in progress")

	// ErrNotFound means the referenced session or tool does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrNotConnected means an operation needs a live capture agent and none
	// is connected.
	ErrNotConnected = errors.New("capture agent not connected")

	// ErrValidation means a required field (name) was missing or malformed.
	ErrValidation = errors.New("validation failed")
)
