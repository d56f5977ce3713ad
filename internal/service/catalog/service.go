package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

const (
	cacheTTL      = 5 * time.Minute
	cacheSweep    = 10 * time.Minute
	activeListKey = "services:active"
	fullListKey   = "services:all"
)

// Service is the catalog. Reads are cached; every write invalidates so
// availability always prices against the current duration and price.
type Service struct {
	repo  repository.ServiceRepository
	cache *cache.Cache
}

func NewService(repo repository.ServiceRepository) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(cacheTTL, cacheSweep),
	}
}

// GetByID resolves a catalog entry. Unknown ids surface as NotFound so
// the scheduling layer never has to interpret repository sentinels.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		return cached.(*model.Service), nil
	}

	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get service: %w", err))
	}

	s.cache.Set(id.String(), svc, cache.DefaultExpiration)
	return svc, nil
}

func (s *Service) List(ctx context.Context, activeOnly bool) ([]*model.Service, error) {
	key := fullListKey
	if activeOnly {
		key = activeListKey
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*model.Service), nil
	}

	services, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list services: %w", err))
	}

	s.cache.Set(key, services, cache.DefaultExpiration)
	return services, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	now := time.Now()
	svc := &model.Service{
		ID:              uuid.New(),
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		DurationMinutes: req.DurationMinutes,
		PriceCents:      req.PriceCents,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create service: %w", err))
	}

	s.invalidate(svc.ID)
	return svc, nil
}

// Update edits the catalog entry. Existing appointments keep their
// snapshotted duration and price untouched.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get service: %w", err))
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Category != nil {
		svc.Category = *req.Category
	}
	if req.DurationMinutes != nil {
		svc.DurationMinutes = *req.DurationMinutes
	}
	if req.PriceCents != nil {
		svc.PriceCents = *req.PriceCents
	}
	if req.Active != nil {
		svc.Active = *req.Active
	}
	svc.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, svc); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update service: %w", err))
	}

	s.invalidate(id)
	return svc, nil
}

// Deactivate is the catalog's delete: the entry stops being offered but
// stays referenceable from historical appointments.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	inactive := false
	return s.Update(ctx, id, &model.UpdateServiceRequest{Active: &inactive})
}

func (s *Service) invalidate(id uuid.UUID) {
	s.cache.Delete(id.String())
	s.cache.Delete(activeListKey)
	s.cache.Delete(fullListKey)
}
