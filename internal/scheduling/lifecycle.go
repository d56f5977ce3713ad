package scheduling

import (
	"time"

	"github.com/idib19/glamstore-sub001/internal/model"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

// transitions is the appointment status state machine. Terminal statuses
// (completed, cancelled, no_show) have no outgoing edges.
var transitions = map[model.AppointmentStatus][]model.AppointmentStatus{
	model.AppointmentStatusScheduled: {
		model.AppointmentStatusConfirmed,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusInProgress,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	},
	model.AppointmentStatusInProgress: {
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
	},
}

// ValidateTransition checks that moving the appointment to target is
// legal from its current status. no_show is additionally gated on the
// start time having passed; everything else is purely a table lookup.
// Nothing here is time-driven: the sweeper and administrators both go
// through this same check.
func ValidateTransition(apt *model.Appointment, target model.AppointmentStatus, now time.Time) error {
	if apt.Status == target {
		return apperrors.InvalidTransition(string(apt.Status), string(target))
	}

	for _, allowed := range transitions[apt.Status] {
		if allowed != target {
			continue
		}
		if target == model.AppointmentStatusNoShow && now.Before(apt.StartTime) {
			return apperrors.NewUnprocessable("appointment cannot be marked no-show before its start time", nil)
		}
		return nil
	}

	return apperrors.InvalidTransition(string(apt.Status), string(target))
}
