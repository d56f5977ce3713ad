package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	"github.com/idib19/glamstore-sub001/internal/service/catalog"
	"github.com/idib19/glamstore-sub001/internal/service/customer"
	"github.com/idib19/glamstore-sub001/internal/service/notification"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

// Service is the booking orchestrator: it resolves customers, drives the
// scheduling engine, and fans out notification events. All slot and
// lifecycle decisions live in the engine.
type Service struct {
	engine       *scheduling.Engine
	appointments repository.AppointmentRepository
	catalog      *catalog.Service
	customers    *customer.Service
	notifier     *notification.Service
}

func NewService(
	engine *scheduling.Engine,
	appointments repository.AppointmentRepository,
	cat *catalog.Service,
	customers *customer.Service,
	notifier *notification.Service,
) *Service {
	return &Service{
		engine:       engine,
		appointments: appointments,
		catalog:      cat,
		customers:    customers,
		notifier:     notifier,
	}
}

// ListAvailability parses the query date and returns the open start times
// for the service, formatted HH:MM.
func (s *Service) ListAvailability(ctx context.Context, dateStr string, serviceID uuid.UUID) ([]string, error) {
	date, err := s.engine.Calendar().ParseDate(dateStr)
	if err != nil {
		return nil, apperrors.BadRequest("date must be formatted YYYY-MM-DD", err)
	}
	return s.engine.ListAvailableSlots(ctx, date, serviceID)
}

// Book resolves the customer by email and commits the appointment. The
// confirmation event is enqueued after the commit succeeds.
func (s *Service) Book(ctx context.Context, req *model.CreateBookingRequest) (*model.Appointment, error) {
	date, err := s.engine.Calendar().ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.BadRequest("date must be formatted YYYY-MM-DD", err)
	}
	start, err := s.engine.Calendar().ParseStart(date, req.Start)
	if err != nil {
		return nil, apperrors.BadRequest("start must be formatted HH:MM", err)
	}

	cust, err := s.customers.GetOrCreate(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	apt, err := s.engine.CommitBooking(ctx, scheduling.CommitInput{
		CustomerID: cust.ID,
		ServiceID:  req.ServiceID,
		Date:       date,
		Start:      start,
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.enqueueEvent(ctx, model.EventBookingConfirmed, apt, cust)
	return apt, nil
}

// Update applies either a status change or a reschedule. A request that
// carries both is ambiguous and rejected.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	if req.IsStatusChange() && req.IsReschedule() {
		return nil, apperrors.BadRequest("request mixes a status change with a reschedule", nil)
	}

	switch {
	case req.IsStatusChange():
		apt, err := s.engine.Transition(ctx, id, *req.Status)
		if err != nil {
			return nil, err
		}
		if *req.Status == model.AppointmentStatusCancelled {
			s.notifyByCustomer(ctx, model.EventBookingCancelled, apt)
		}
		return apt, nil

	case req.IsReschedule():
		if req.Date == nil || req.Start == nil {
			return nil, apperrors.BadRequest("reschedule requires both date and start", nil)
		}
		date, err := s.engine.Calendar().ParseDate(*req.Date)
		if err != nil {
			return nil, apperrors.BadRequest("date must be formatted YYYY-MM-DD", err)
		}
		start, err := s.engine.Calendar().ParseStart(date, *req.Start)
		if err != nil {
			return nil, apperrors.BadRequest("start must be formatted HH:MM", err)
		}
		apt, err := s.engine.Reschedule(ctx, id, date, start, req.ServiceID)
		if err != nil {
			return nil, err
		}
		s.notifyByCustomer(ctx, model.EventBookingUpdated, apt)
		return apt, nil

	default:
		return nil, apperrors.BadRequest("request carries no changes", nil)
	}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list appointments: %w", err))
	}
	return appointments, nil
}

func (s *Service) notifyByCustomer(ctx context.Context, eventType string, apt *model.Appointment) {
	cust, err := s.customers.Get(ctx, apt.CustomerID)
	if err != nil {
		return
	}
	s.enqueueEvent(ctx, eventType, apt, cust)
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, apt *model.Appointment, cust *model.Customer) {
	serviceName := ""
	if svc, err := s.catalog.GetByID(ctx, apt.ServiceID); err == nil {
		serviceName = svc.Name
	}

	loc := s.engine.Calendar().Location()
	s.notifier.Enqueue(ctx, eventType, model.BookingEvent{
		AppointmentID: apt.ID,
		CustomerName:  cust.Name,
		CustomerEmail: cust.Email,
		ServiceName:   serviceName,
		Date:          apt.AppointmentDate.In(loc).Format(scheduling.DateFormat),
		Start:         apt.StartTime.In(loc).Format(scheduling.TimeFormat),
		End:           apt.EndTime.In(loc).Format(scheduling.TimeFormat),
	})
}
