package fs

import (
	"path/filepath"
	"time"

	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path             string     `json:"path"`
	Format           string     `json:"format"`
	CrossProcessLock bool       `json:"cross_process_lock"`
	WatcherActive    bool       `json:"watcher_active"`
	Writes           int        `json:"writes"`
	LastWrite        *time.Time `json:"last_write,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:             s.Path,
		Format:           filepath.Ext(s.Path),
		CrossProcessLock: s.config.CrossProcessLock,
		WatcherActive:    s.watcherActive,
		Writes:           s.writes,
		LastWrite:        s.lastWrite,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "file-store"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)
