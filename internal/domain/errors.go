package domain

import "errors"

// Sentinel errors shared across repositories, services and handlers.
// Callers match with errors.Is after unwrapping.
var (
	// ErrStoreUnavailable means the backing store could not be reached.
	// Read paths convert it to an empty result; mutations surface it.
	ErrStoreUnavailable = errors.New("backing store unavailable")

	// ErrInvalidCredentials is returned for any authentication failure.
	// Unknown tenant, unknown login and wrong password are deliberately
	// indistinguishable to prevent enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrDuplicate means the target identifier is already registered.
	ErrDuplicate = errors.New("already exists")

	// ErrValidation means a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrPermissionDenied means the identity's role lacks the capability.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound means the target record vanished between listing and
	// mutation.
	ErrNotFound = errors.New("not found")
)
