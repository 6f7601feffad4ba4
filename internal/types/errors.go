package types

import "errors"

var (
	// ErrSessionNotFound covers both unknown and expired sessions.
	ErrSessionNotFound        = errors.New("session not found")
	ErrInvalidPreference      = errors.New("invalid preference value")
	ErrRecordStoreUnavailable = errors.New("record store unavailable")
	ErrEmptyText              = errors.New("text is required")
)
