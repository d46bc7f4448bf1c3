package memstore

import (
	"context"

	"novelhub/internal/settings"
)

type siteSettings struct {
	s *Store
}

func (r siteSettings) Get(_ context.Context) (*settings.SiteSettings, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.settings == nil {
		created := settings.Default()
		created.UpdatedAt = s.now()
		s.settings = created
		if err := s.persistLocked(); err != nil {
			s.settings = nil
			return nil, err
		}
	}
	out := *s.settings
	return &out, nil
}

func (r siteSettings) Update(_ context.Context, enablePayments bool) (*settings.SiteSettings, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.settings
	next := settings.Default()
	if prev != nil {
		*next = *prev
	}
	next.EnablePayments = enablePayments
	next.UpdatedAt = s.now()
	s.settings = next

	if err := s.persistLocked(); err != nil {
		s.settings = prev
		return nil, err
	}
	out := *s.settings
	return &out, nil
}
