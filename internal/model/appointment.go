package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// ActiveStatuses are the statuses that count toward the overlap invariant.
// Cancelled and no-show appointments release their interval for
// re-booking.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusScheduled,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
	AppointmentStatusCompleted,
}

// IsActive reports whether the status blocks its time interval.
func (s AppointmentStatus) IsActive() bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is permitted.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted ||
		s == AppointmentStatusCancelled ||
		s == AppointmentStatusNoShow
}

// Appointment is the durable booking record. Price and duration are
// snapshotted from the service at commit time; EndTime is always
// StartTime plus the snapshotted duration and is never recomputed when
// the catalog changes.
type Appointment struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	CustomerID         uuid.UUID         `db:"customer_id" json:"customer_id"`
	ServiceID          uuid.UUID         `db:"service_id" json:"service_id"`
	AppointmentDate    time.Time         `db:"appointment_date" json:"appointment_date"`
	StartTime          time.Time         `db:"start_time" json:"start_time"`
	EndTime            time.Time         `db:"end_time" json:"end_time"`
	Status             AppointmentStatus `db:"status" json:"status"`
	TotalPriceCents    int64             `db:"total_price_cents" json:"total_price_cents"`
	DepositAmountCents int64             `db:"deposit_amount_cents" json:"deposit_amount_cents"`
	DepositPaid        bool              `db:"deposit_paid" json:"deposit_paid"`
	Notes              string            `db:"notes" json:"notes,omitempty"`
	CreatedAt          time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time         `db:"updated_at" json:"updated_at"`
}

type BookingCustomer struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone"`
}

type CreateBookingRequest struct {
	ServiceID uuid.UUID       `json:"service_id" binding:"required"`
	Date      string          `json:"date" binding:"required,dateymd"`
	Start     string          `json:"start" binding:"required,hhmm"`
	Customer  BookingCustomer `json:"customer" binding:"required"`
	Notes     string          `json:"notes" binding:"max=1000"`
}

// UpdateAppointmentRequest is either a status change or a reschedule
// (date/start/service); mixing both in one call is rejected.
type UpdateAppointmentRequest struct {
	Status    *AppointmentStatus `json:"status"`
	Date      *string            `json:"date" binding:"omitempty,dateymd"`
	Start     *string            `json:"start" binding:"omitempty,hhmm"`
	ServiceID *uuid.UUID         `json:"service_id"`
}

func (r *UpdateAppointmentRequest) IsStatusChange() bool {
	return r.Status != nil
}

func (r *UpdateAppointmentRequest) IsReschedule() bool {
	return r.Date != nil || r.Start != nil || r.ServiceID != nil
}

type AppointmentFilters struct {
	Date   *time.Time
	Status *AppointmentStatus
}
