package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	RepositoryType string     `json:"repository_type"`
	Legacy         bool       `json:"legacy"`
	ReadOnly       bool       `json:"read_only"`
	Ready          bool       `json:"ready"`
	LastRebuild    *time.Time `json:"last_rebuild,omitempty"`
	Upserts        int        `json:"upserts"`
	Records        int        `json:"records"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.stats.RLock()
	defer s.stats.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		RepositoryType: repoType,
		Legacy:         s.legacy != nil,
		ReadOnly:       s.readOnly,
		Ready:          s.stats.ready,
		LastRebuild:    s.stats.lastRebuild,
		Upserts:        s.stats.upserts,
		Records:        s.stats.records,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
