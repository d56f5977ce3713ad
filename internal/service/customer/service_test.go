package customer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
)

type fakeCustomerRepo struct {
	byEmail map[string]*model.Customer
	byID    map[uuid.UUID]*model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		byEmail: make(map[string]*model.Customer),
		byID:    make(map[uuid.UUID]*model.Customer),
	}
}

func (r *fakeCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	key := strings.ToLower(c.Email)
	if _, ok := r.byEmail[key]; ok {
		return repository.ErrDuplicateEmail
	}
	clone := *c
	r.byEmail[key] = &clone
	r.byID[c.ID] = &clone
	return nil
}

func (r *fakeCustomerRepo) Get(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	c, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return c, nil
}

func (r *fakeCustomerRepo) List(_ context.Context) ([]*model.Customer, error) {
	out := make([]*model.Customer, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, c)
	}
	return out, nil
}

func TestGetOrCreateNewCustomer(t *testing.T) {
	svc := NewService(newFakeCustomerRepo())

	cust, err := svc.GetOrCreate(context.Background(), model.BookingCustomer{
		Name:  "Amina Diallo",
		Email: "Amina@Example.com",
		Phone: "555-0101",
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, cust.ID)
	assert.Equal(t, "amina@example.com", cust.Email)
}

func TestGetOrCreateReusesExistingByEmail(t *testing.T) {
	repo := newFakeCustomerRepo()
	svc := NewService(repo)

	first, err := svc.GetOrCreate(context.Background(), model.BookingCustomer{
		Name:  "Amina Diallo",
		Email: "amina@example.com",
	})
	require.NoError(t, err)

	// Different casing and surrounding whitespace still hit the same record.
	second, err := svc.GetOrCreate(context.Background(), model.BookingCustomer{
		Name:  "A. Diallo",
		Email: "  AMINA@example.com ",
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.byID, 1)
}

func TestGetOrCreateLostRaceFallsBackToWinner(t *testing.T) {
	winner := &model.Customer{
		ID:        uuid.New(),
		Name:      "Winner",
		Email:     "race@example.com",
		CreatedAt: time.Now(),
	}
	raceSvc := NewService(&racingRepo{fakeCustomerRepo: newFakeCustomerRepo(), winner: winner})

	cust, err := raceSvc.GetOrCreate(context.Background(), model.BookingCustomer{
		Name:  "Loser",
		Email: "race@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, winner.ID, cust.ID)
}

// racingRepo misses the first lookup, rejects the create as a duplicate,
// then serves the winner, emulating a concurrent insert between the two.
type racingRepo struct {
	*fakeCustomerRepo
	winner  *model.Customer
	lookups int
}

func (r *racingRepo) GetByEmail(_ context.Context, email string) (*model.Customer, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, repository.ErrNotFound
	}
	return r.winner, nil
}

func (r *racingRepo) Create(_ context.Context, _ *model.Customer) error {
	return repository.ErrDuplicateEmail
}
