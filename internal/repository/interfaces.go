package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/idib19/glamstore-sub001/internal/model"
)

// Sentinel errors repositories translate driver failures into; services
// map these onto the API error taxonomy.
var (
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateSlot is returned when an insert or update trips the
	// partial unique index on (appointment_date, start_time) over active
	// statuses, i.e. another booking won the slot.
	ErrDuplicateSlot = errors.New("slot already booked")

	ErrDuplicateEmail = errors.New("email already registered")
)

type (
	AppointmentRepository interface {
		Create(ctx context.Context, apt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update rewrites the schedulable fields (date, interval, service,
		// snapshot) of an existing appointment.
		Update(ctx context.Context, apt *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error)
		// ListByDate returns every appointment on the calendar day,
		// regardless of status, ordered by start time.
		ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// ListOverdue returns active appointments in the given statuses
		// whose start time is before the cutoff; used by the sweeper.
		ListOverdue(ctx context.Context, statuses []model.AppointmentStatus, cutoff time.Time) ([]*model.Appointment, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, svc *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, svc *model.Service) error
		List(ctx context.Context, activeOnly bool) ([]*model.Service, error)
	}

	CustomerRepository interface {
		Create(ctx context.Context, customer *model.Customer) error
		Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
		GetByEmail(ctx context.Context, email string) (*model.Customer, error)
		List(ctx context.Context) ([]*model.Customer, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEventsWithLock(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
	}
)
