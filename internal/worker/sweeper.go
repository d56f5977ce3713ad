package worker

import (
	"context"
	"time"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	"github.com/idib19/glamstore-sub001/internal/scheduling"
	"github.com/idib19/glamstore-sub001/pkg/logger"
)

type SweeperConfig struct {
	Interval    time.Duration
	NoShowGrace time.Duration
}

// Sweeper marks overdue appointments as no-shows. An appointment still
// sitting in scheduled or confirmed past its start plus the grace period
// is considered missed; anything the owner already moved along is left
// alone.
type Sweeper struct {
	appointments repository.AppointmentRepository
	engine       *scheduling.Engine
	config       SweeperConfig
	logger       *logger.Logger
}

func NewSweeper(
	appointments repository.AppointmentRepository,
	engine *scheduling.Engine,
	config SweeperConfig,
	log *logger.Logger,
) *Sweeper {
	if config.Interval <= 0 {
		config.Interval = 5 * time.Minute
	}
	if config.NoShowGrace <= 0 {
		config.NoShowGrace = 30 * time.Minute
	}
	return &Sweeper{
		appointments: appointments,
		engine:       engine,
		config:       config,
		logger:       log,
	}
}

func (s *Sweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.logger.Info("Starting no-show sweeper",
		"interval", s.config.Interval.String(),
		"grace", s.config.NoShowGrace.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Shutting down no-show sweeper")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.NoShowGrace)
	overdue, err := s.appointments.ListOverdue(ctx, []model.AppointmentStatus{
		model.AppointmentStatusScheduled,
		model.AppointmentStatusConfirmed,
	}, cutoff)
	if err != nil {
		s.logger.Error(err, "Failed to list overdue appointments")
		return
	}

	for _, apt := range overdue {
		if _, err := s.engine.Transition(ctx, apt.ID, model.AppointmentStatusNoShow); err != nil {
			// A concurrent status change is fine; the next pass settles it.
			s.logger.Warn("Failed to mark appointment as no-show",
				"appointment_id", apt.ID.String(),
				"error", err.Error())
			continue
		}
		s.logger.Info("Appointment marked as no-show",
			"appointment_id", apt.ID.String(),
			"start", apt.StartTime.Format(time.RFC3339))
	}
}
