package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

type Service struct {
	repo repository.CustomerRepository
}

func NewService(repo repository.CustomerRepository) *Service {
	return &Service{repo: repo}
}

// GetOrCreate deduplicates by email: a repeat booking reuses the existing
// customer record and refreshes name and phone if they changed.
func (s *Service) GetOrCreate(ctx context.Context, in model.BookingCustomer) (*model.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.Internal(fmt.Errorf("failed to look up customer: %w", err))
	}

	now := time.Now()
	customer := &model.Customer{
		ID:        uuid.New(),
		Name:      in.Name,
		Email:     email,
		Phone:     in.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		// Lost a create race on the same email; the winner's record serves.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return s.getExisting(ctx, email)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create customer: %w", err))
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("customer", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get customer: %w", err))
	}
	return customer, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Customer, error) {
	customers, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list customers: %w", err))
	}
	return customers, nil
}

func (s *Service) getExisting(ctx context.Context, email string) (*model.Customer, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to look up customer after duplicate: %w", err))
	}
	return existing, nil
}
