package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
)

// appointments_active_slot_idx is the partial unique index on
// (appointment_date, start_time) over active statuses; a 23505 from it
// means another writer committed the slot first.
const activeSlotConstraint = "appointments_active_slot_idx"

func isDuplicateSlot(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505" && pqErr.Constraint == activeSlotConstraint
	}
	return false
}

func (r *appointmentRepository) Create(ctx context.Context, apt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, customer_id, service_id, appointment_date,
			start_time, end_time, status, total_price_cents,
			deposit_amount_cents, deposit_paid, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err := r.db.ExecContext(ctx, query,
		apt.ID,
		apt.CustomerID,
		apt.ServiceID,
		apt.AppointmentDate,
		apt.StartTime,
		apt.EndTime,
		apt.Status,
		apt.TotalPriceCents,
		apt.DepositAmountCents,
		apt.DepositPaid,
		apt.Notes,
		apt.CreatedAt,
		apt.UpdatedAt,
	)
	if err != nil {
		if isDuplicateSlot(err) {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, customer_id, service_id, appointment_date,
			   start_time, end_time, status, total_price_cents,
			   deposit_amount_cents, deposit_paid, notes,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, apt *model.Appointment) error {
	query := `
		UPDATE appointments
		SET service_id = $1, appointment_date = $2, start_time = $3,
			end_time = $4, total_price_cents = $5, notes = $6, updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		apt.ServiceID,
		apt.AppointmentDate,
		apt.StartTime,
		apt.EndTime,
		apt.TotalPriceCents,
		apt.Notes,
		apt.UpdatedAt,
		apt.ID,
	)
	if err != nil {
		if isDuplicateSlot(err) {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING id, customer_id, service_id, appointment_date,
				  start_time, end_time, status, total_price_cents,
				  deposit_amount_cents, deposit_paid, notes,
				  created_at, updated_at
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, status, time.Now(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update appointment status: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, customer_id, service_id, appointment_date,
			   start_time, end_time, status, total_price_cents,
			   deposit_amount_cents, deposit_paid, notes,
			   created_at, updated_at
		FROM appointments
		WHERE appointment_date = $1
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, date); err != nil {
		return nil, fmt.Errorf("failed to list appointments by date: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, customer_id, service_id, appointment_date,
			   start_time, end_time, status, total_price_cents,
			   deposit_amount_cents, deposit_paid, notes,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argPos := 1

	if filters != nil && filters.Date != nil {
		query += fmt.Sprintf(" AND appointment_date = $%d", argPos)
		args = append(args, *filters.Date)
		argPos++
	}
	if filters != nil && filters.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, *filters.Status)
		argPos++
	}
	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListOverdue(ctx context.Context, statuses []model.AppointmentStatus, cutoff time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, customer_id, service_id, appointment_date,
			   start_time, end_time, status, total_price_cents,
			   deposit_amount_cents, deposit_paid, notes,
			   created_at, updated_at
		FROM appointments
		WHERE status = ANY($1)
		AND start_time < $2
		ORDER BY start_time ASC
	`
	raw := make([]string, len(statuses))
	for i, s := range statuses {
		raw[i] = string(s)
	}

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, pq.Array(raw), cutoff); err != nil {
		return nil, fmt.Errorf("failed to list overdue appointments: %w", err)
	}
	return appointments, nil
}
