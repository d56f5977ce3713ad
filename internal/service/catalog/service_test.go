package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

type fakeServiceRepo struct {
	services map[uuid.UUID]*model.Service
	gets     int
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: make(map[uuid.UUID]*model.Service)}
}

func (r *fakeServiceRepo) Create(_ context.Context, svc *model.Service) error {
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.gets++
	svc, ok := r.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *svc
	return &clone, nil
}

func (r *fakeServiceRepo) Update(_ context.Context, svc *model.Service) error {
	if _, ok := r.services[svc.ID]; !ok {
		return repository.ErrNotFound
	}
	clone := *svc
	r.services[svc.ID] = &clone
	return nil
}

func (r *fakeServiceRepo) List(_ context.Context, activeOnly bool) ([]*model.Service, error) {
	var out []*model.Service
	for _, svc := range r.services {
		if activeOnly && !svc.Active {
			continue
		}
		out = append(out, svc)
	}
	return out, nil
}

func TestGetByIDUnknownServiceIsNotFound(t *testing.T) {
	svc := NewService(newFakeServiceRepo())
	_, err := svc.GetByID(context.Background(), uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrNotFound))
}

func TestGetByIDCachesReads(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &model.CreateServiceRequest{
		Name:            "Gel Manicure",
		DurationMinutes: 45,
		PriceCents:      6500,
	})
	require.NoError(t, err)

	repo.gets = 0
	for i := 0; i < 3; i++ {
		got, err := svc.GetByID(context.Background(), created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
	}
	assert.Equal(t, 1, repo.gets)
}

func TestUpdateInvalidatesCache(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &model.CreateServiceRequest{
		Name:            "Gel Manicure",
		DurationMinutes: 45,
		PriceCents:      6500,
	})
	require.NoError(t, err)

	// Warm the cache, then edit the price.
	_, err = svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)

	newPrice := int64(7000)
	_, err = svc.Update(context.Background(), created.ID, &model.UpdateServiceRequest{
		PriceCents: &newPrice,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, newPrice, got.PriceCents)
}

func TestUpdateDeactivateHidesFromActiveList(t *testing.T) {
	repo := newFakeServiceRepo()
	svc := NewService(repo)

	created, err := svc.Create(context.Background(), &model.CreateServiceRequest{
		Name:            "Balayage",
		DurationMinutes: 120,
		PriceCents:      21000,
	})
	require.NoError(t, err)

	inactive := false
	_, err = svc.Update(context.Background(), created.ID, &model.UpdateServiceRequest{
		Active: &inactive,
	})
	require.NoError(t, err)

	active, err := svc.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := svc.List(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
