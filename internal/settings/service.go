package settings

import (
	"context"

	"novelhub/internal/entitlement"
	"novelhub/internal/logger"
	"novelhub/internal/metrics"
)

type Service interface {
	// Current may serve a cached copy. Use it for display paths only.
	Current(ctx context.Context) (*SiteSettings, error)
	// Fresh always reads storage.
	Fresh(ctx context.Context) (*SiteSettings, error)
	Update(ctx context.Context, req UpdateRequest) (*SiteSettings, error)
	EntitlementSettings(ctx context.Context) (entitlement.Settings, error)
}

type service struct {
	repo  Repository
	cache Cache
}

// NewService wires the settings store. cache may be nil.
func NewService(repo Repository, cache Cache) Service {
	return &service{
		repo:  repo,
		cache: cache,
	}
}

func (s *service) Current(ctx context.Context) (*SiteSettings, error) {
	if s.cache == nil {
		return s.repo.Get(ctx)
	}

	cached, ok, err := s.cache.Get(ctx)
	switch {
	case err != nil:
		metrics.RecordSettingsCache("error")
		logger.WithError(err).Warn("settings cache read failed")
	case ok:
		metrics.RecordSettingsCache("hit")
		return cached, nil
	default:
		metrics.RecordSettingsCache("miss")
	}

	fresh, err := s.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, fresh); err != nil {
		logger.WithError(err).Warn("settings cache write failed")
	}
	return fresh, nil
}

func (s *service) Fresh(ctx context.Context) (*SiteSettings, error) {
	return s.repo.Get(ctx)
}

func (s *service) Update(ctx context.Context, req UpdateRequest) (*SiteSettings, error) {
	updated, err := s.repo.Update(ctx, *req.EnablePayments)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			logger.WithError(err).Warn("settings cache invalidation failed")
		}
	}
	logger.Info("site settings updated", "enable_payments", updated.EnablePayments)
	return updated, nil
}

func (s *service) EntitlementSettings(ctx context.Context) (entitlement.Settings, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return entitlement.Settings{}, err
	}
	return current.Entitlement(), nil
}
