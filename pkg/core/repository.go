package core

import "context"

// Repository defines the contract for the canonical record store.
// Adhering to this interface keeps the service independent of the
// underlying storage mechanism.
type Repository interface {
	// Load returns every persisted record, already sanitized.
	// A missing or unreadable store is reported as empty, not as an error.
	Load(ctx context.Context) ([]Record, error)

	// Save replaces the persisted content with records.
	// Implementations must be atomic with respect to concurrent readers.
	Save(ctx context.Context, records []Record) error

	// Initialize ensures the underlying storage is ready (e.g. create directories).
	Initialize(ctx context.Context) error
}

// LegacySource is an older, read-only representation consulted during Rebuild.
type LegacySource interface {
	// LoadLegacy returns the sanitized legacy records. Absence is not an error.
	LoadLegacy(ctx context.Context) ([]Record, error)
}

// Locker is implemented by repositories that can also exclude other processes.
type Locker interface {
	// Lock blocks until the lock is held or ctx ends. The returned func releases it.
	Lock(ctx context.Context) (func(), error)
}

// Watchable is implemented by repositories that can report external changes.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}
