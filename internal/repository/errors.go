package repository

import "errors"

// Shared repository errors. Anything else returned by an implementation is
// treated by callers as "store unavailable" and absorbed into a fallback.
var (
	// ErrNotFound means the requested record is absent.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEntry means a write violated a unique constraint.
	ErrDuplicateEntry = errors.New("repository: duplicate entry")
)

var (
	ErrRoomNotFound    = ErrNotFound
	ErrMessageNotFound = ErrNotFound
	ErrRequestNotFound = ErrNotFound
	ErrCallLogNotFound = ErrNotFound
)
