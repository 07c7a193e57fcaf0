package status

import "errors"

// Error taxonomy for the status cache and its feeders. Update absorbs
// failures into the last-error field; only reads return ErrNotYetAvailable.
var (
	// ErrNotYetAvailable means no snapshot has ever been produced.
	// Callers translate it into a "not ready" response, never into
	// default or invented data.
	ErrNotYetAvailable = errors.New("status not available yet")

	// ErrMalformedContent means the file was read but its content could
	// not be parsed or lacked a required field. The prior snapshot stays
	// authoritative.
	ErrMalformedContent = errors.New("malformed status content")

	// ErrTransientRead means the file was unreadable or mid-write at
	// notification time. The prior snapshot stays authoritative.
	ErrTransientRead = errors.New("transient status read failure")
)
