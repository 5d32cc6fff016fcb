package core

import (
	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Records         int    `json:"records"`
	Dirty           int    `json:"dirty"`
	Skinny          int    `json:"skinny"`
	Subscribers     int    `json:"subscribers"`
	EventBufferSize int    `json:"event_buffer_size"`
	ReadOnly        bool   `json:"read_only"`
	RepositoryType  string `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	skinny := 0
	for _, doc := range s.records {
		if doc.IsSkinny() {
			skinny++
		}
	}

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		Records:         len(s.records),
		Dirty:           len(s.dirty),
		Skinny:          skinny,
		Subscribers:     len(s.subscribers),
		EventBufferSize: s.eventBufferSize,
		ReadOnly:        s.readOnly,
		RepositoryType:  repoType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
