package core

import "errors"

// Common errors.
var (
	// ErrInvalidRecord is returned when a submitted record is rejected by sanitization.
	ErrInvalidRecord = errors.New("invalid record")
	// ErrReadOnly is returned by mutating operations on a read-only service.
	ErrReadOnly = errors.New("store is in read-only mode")
	// ErrLockTimeout is returned when the cross-process store lock cannot be acquired in time.
	ErrLockTimeout = errors.New("timed out waiting for store lock")
)
