package service

import "errors"

// Error taxonomy shared by every service. Operations wrap these sentinels
// with fmt.Errorf("%w: ...") so callers can classify failures with
// errors.Is while still getting a human-readable message. All of them are
// recoverable at the request boundary: the operation aborts with no partial
// persistence and the caller must resubmit.
var (
	// ErrValidation marks bad or missing input; nothing was changed.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidState marks an operation not permitted in the entity's
	// current status.
	ErrInvalidState = errors.New("invalid state")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidArgument marks an unrecognized enum-like value.
	ErrInvalidArgument = errors.New("invalid argument")
)
