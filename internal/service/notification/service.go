package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/idib19/glamstore-sub001/internal/model"
	"github.com/idib19/glamstore-sub001/internal/repository"
	"github.com/idib19/glamstore-sub001/pkg/logger"
)

// Service records booking notifications through the outbox so they are
// committed alongside the booking and delivered by the worker. A failed
// enqueue is logged but never fails the booking itself.
type Service struct {
	outbox repository.OutboxRepository
	logger *logger.Logger
}

func NewService(outbox repository.OutboxRepository, log *logger.Logger) *Service {
	return &Service{outbox: outbox, logger: log}
}

func (s *Service) Enqueue(ctx context.Context, eventType string, event model.BookingEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(err, "failed to marshal booking event",
			"event_type", eventType,
			"appointment_id", event.AppointmentID.String())
		return
	}

	evt := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outbox.Create(ctx, evt); err != nil {
		s.logger.Error(fmt.Errorf("failed to enqueue outbox event: %w", err),
			"booking notification dropped",
			"event_type", eventType,
			"appointment_id", event.AppointmentID.String())
	}
}
