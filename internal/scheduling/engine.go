package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
	"github.com/idib19/glamstore-sub001/pkg/logger"
	"github.com/idib19/glamstore-sub001/pkg/metrics"
)

// ServiceLookup is the slice of the catalog the engine needs: resolve a
// service id to its current duration and price for the booking snapshot.
type ServiceLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

// Engine owns the availability computation and the consistency-critical
// commit path. Reads are lock-free and advisory; commits serialize per
// calendar day through an in-process lock, with the store's unique index
// as the backstop for multi-process deployments.
type Engine struct {
	calendar     *Calendar
	appointments repository.AppointmentRepository
	services     ServiceLookup
	locks        *dateLocks
	lockWait     time.Duration
	metrics      *metrics.Metrics
	logger       *logger.Logger
	now          func() time.Time
}

func NewEngine(
	calendar *Calendar,
	appointments repository.AppointmentRepository,
	services ServiceLookup,
	lockWait time.Duration,
	m *metrics.Metrics,
	log *logger.Logger,
) *Engine {
	return &Engine{
		calendar:     calendar,
		appointments: appointments,
		services:     services,
		locks:        newDateLocks(),
		lockWait:     lockWait,
		metrics:      m,
		logger:       log,
		now:          func() time.Time { return time.Now() },
	}
}

// Calendar exposes the business calendar for request parsing at the edge.
func (e *Engine) Calendar() *Calendar {
	return e.calendar
}

// ListAvailableSlots returns the bookable start times for the service on
// the given date, ordered ascending, formatted HH:MM in the business
// timezone. An empty result is a normal state, not an error; an unknown
// or inactive service is NotFound.
func (e *Engine) ListAvailableSlots(ctx context.Context, date time.Time, serviceID uuid.UUID) ([]string, error) {
	if e.metrics != nil {
		timer := prometheus.NewTimer(e.metrics.AvailabilityLatency)
		defer timer.ObserveDuration()
	}

	svc, err := e.lookupService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	candidates := e.calendar.Candidates(date, duration, e.now())
	if len(candidates) == 0 {
		return []string{}, nil
	}

	// One read for the whole day; filtering happens in memory so a store
	// that changes mid-scan cannot produce a torn view across slots.
	existing, err := e.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}

	slots := make([]string, 0, len(candidates))
	for _, start := range candidates {
		if IsFree(start, duration, existing, uuid.Nil) {
			slots = append(slots, start.In(e.calendar.Location()).Format(TimeFormat))
		}
	}
	return slots, nil
}

// CommitInput carries a booking request the edge has already resolved to
// concrete instants.
type CommitInput struct {
	CustomerID uuid.UUID
	ServiceID  uuid.UUID
	Date       time.Time
	Start      time.Time
	Notes      string
}

// CommitBooking re-validates the slot against the freshest read of the
// day and persists the appointment, all inside the per-date critical
// section. Losing the race surfaces as a Conflict; the caller is expected
// to re-query availability and pick again; the engine never retries.
func (e *Engine) CommitBooking(ctx context.Context, in CommitInput) (*model.Appointment, error) {
	svc, err := e.lookupService(ctx, in.ServiceID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	if err := e.validateSlotShape(in.Start, duration); err != nil {
		return nil, err
	}
	if !in.Start.After(e.now()) {
		return nil, apperrors.SlotUnavailable(fmt.Errorf("start time has already elapsed"))
	}

	release, ok := e.locks.Acquire(ctx, e.dateKey(in.Date), e.lockWait)
	if !ok {
		if e.metrics != nil {
			e.metrics.BookingLockTimeouts.Inc()
		}
		return nil, apperrors.NewTransient("booking is busy for this date, retry shortly", nil)
	}
	defer release()

	existing, err := e.appointments.ListByDate(ctx, in.Date)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	if !IsFree(in.Start, duration, existing, uuid.Nil) {
		if e.metrics != nil {
			e.metrics.BookingConflicts.Inc()
		}
		return nil, apperrors.SlotUnavailable(nil)
	}

	now := e.now()
	apt := &model.Appointment{
		ID:              uuid.New(),
		CustomerID:      in.CustomerID,
		ServiceID:       in.ServiceID,
		AppointmentDate: e.calendar.Midnight(in.Date),
		StartTime:       in.Start,
		EndTime:         in.Start.Add(duration),
		Status:          model.AppointmentStatusScheduled,
		TotalPriceCents: svc.PriceCents,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := e.appointments.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			if e.metrics != nil {
				e.metrics.BookingConflicts.Inc()
			}
			return nil, apperrors.SlotUnavailable(err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
	}

	if e.metrics != nil {
		e.metrics.BookingsCommitted.Inc()
	}
	e.logger.Info("booking committed",
		"appointment_id", apt.ID.String(),
		"service_id", in.ServiceID.String(),
		"start", apt.StartTime.Format(time.RFC3339))

	return apt, nil
}

// Reschedule moves an appointment to a new date/start and optionally a
// new service, re-validating exactly as a fresh booking but excluding the
// appointment's own current interval from the conflict set. The snapshot
// is retaken from the target service.
func (e *Engine) Reschedule(ctx context.Context, id uuid.UUID, date, start time.Time, serviceID *uuid.UUID) (*model.Appointment, error) {
	apt, err := e.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status != model.AppointmentStatusScheduled && apt.Status != model.AppointmentStatusConfirmed {
		return nil, apperrors.NewUnprocessable(
			fmt.Sprintf("appointment in status %s cannot be rescheduled", apt.Status), nil)
	}

	targetServiceID := apt.ServiceID
	if serviceID != nil {
		targetServiceID = *serviceID
	}
	svc, err := e.lookupService(ctx, targetServiceID)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(svc.DurationMinutes) * time.Minute
	if err := e.validateSlotShape(start, duration); err != nil {
		return nil, err
	}
	if !start.After(e.now()) {
		return nil, apperrors.SlotUnavailable(fmt.Errorf("start time has already elapsed"))
	}

	release, ok := e.locks.Acquire(ctx, e.dateKey(date), e.lockWait)
	if !ok {
		if e.metrics != nil {
			e.metrics.BookingLockTimeouts.Inc()
		}
		return nil, apperrors.NewTransient("booking is busy for this date, retry shortly", nil)
	}
	defer release()

	existing, err := e.appointments.ListByDate(ctx, date)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	if !IsFree(start, duration, existing, apt.ID) {
		if e.metrics != nil {
			e.metrics.BookingConflicts.Inc()
		}
		return nil, apperrors.SlotUnavailable(nil)
	}

	apt.ServiceID = targetServiceID
	apt.AppointmentDate = e.calendar.Midnight(date)
	apt.StartTime = start
	apt.EndTime = start.Add(duration)
	apt.TotalPriceCents = svc.PriceCents
	apt.UpdatedAt = e.now()

	if err := e.appointments.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			return nil, apperrors.SlotUnavailable(err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update appointment: %w", err))
	}

	e.logger.Info("appointment rescheduled",
		"appointment_id", apt.ID.String(),
		"start", apt.StartTime.Format(time.RFC3339))

	return apt, nil
}

// Transition applies a status change after validating it against the
// lifecycle state machine. Illegal transitions leave the record untouched.
func (e *Engine) Transition(ctx context.Context, id uuid.UUID, target model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := e.getAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := ValidateTransition(apt, target, e.now()); err != nil {
		return nil, err
	}

	updated, err := e.appointments.UpdateStatus(ctx, id, target)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update appointment status: %w", err))
	}

	e.logger.Info("appointment status changed",
		"appointment_id", id.String(),
		"from", string(apt.Status),
		"to", string(target))

	return updated, nil
}

func (e *Engine) lookupService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := e.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !svc.Active {
		return nil, apperrors.NotFound("service", fmt.Errorf("service %s is inactive", id))
	}
	return svc, nil
}

func (e *Engine) getAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := e.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	return apt, nil
}

// validateSlotShape rejects starts that could never be offered as slots:
// closed weekday, misaligned with the granularity grid, or an interval
// that does not fit the open window.
func (e *Engine) validateSlotShape(start time.Time, duration time.Duration) error {
	if !e.calendar.IsOpenDay(start) {
		return apperrors.BadRequest("the shop is closed on that day", nil)
	}
	if !e.calendar.IsAligned(start) {
		return apperrors.BadRequest("start time is not on a slot boundary", nil)
	}
	if !e.calendar.FitsWindow(start, duration) {
		return apperrors.BadRequest("appointment does not fit within business hours", nil)
	}
	return nil
}

func (e *Engine) dateKey(date time.Time) string {
	return e.calendar.Midnight(date).Format(DateFormat)
}
