package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idib19/glamstore-sub001/internal/model"
	apperrors "github.com/idib19/glamstore-sub001/pkg/errors"
)

func TestValidateTransitionHappyPath(t *testing.T) {
	now := at(12, 0)
	start := at(10, 0)

	steps := []struct {
		from, to model.AppointmentStatus
	}{
		{model.AppointmentStatusScheduled, model.AppointmentStatusConfirmed},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusInProgress},
		{model.AppointmentStatusInProgress, model.AppointmentStatusCompleted},
		{model.AppointmentStatusScheduled, model.AppointmentStatusCancelled},
		{model.AppointmentStatusConfirmed, model.AppointmentStatusCancelled},
		{model.AppointmentStatusInProgress, model.AppointmentStatusCancelled},
	}

	for _, step := range steps {
		a := &model.Appointment{Status: step.from, StartTime: start}
		assert.NoError(t, ValidateTransition(a, step.to, now), "%s -> %s", step.from, step.to)
	}
}

func TestValidateTransitionTerminalStatesFrozen(t *testing.T) {
	now := at(12, 0)
	for _, terminal := range []model.AppointmentStatus{
		model.AppointmentStatusCompleted,
		model.AppointmentStatusCancelled,
		model.AppointmentStatusNoShow,
	} {
		a := &model.Appointment{Status: terminal, StartTime: at(10, 0)}
		for _, target := range []model.AppointmentStatus{
			model.AppointmentStatusScheduled,
			model.AppointmentStatusConfirmed,
			model.AppointmentStatusInProgress,
			model.AppointmentStatusCompleted,
			model.AppointmentStatusCancelled,
		} {
			if target == terminal {
				continue
			}
			err := ValidateTransition(a, target, now)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable),
				"%s -> %s must be rejected", terminal, target)
		}
	}
}

func TestValidateTransitionNoShowRequiresElapsedStart(t *testing.T) {
	start := at(15, 0)
	a := &model.Appointment{Status: model.AppointmentStatusScheduled, StartTime: start}

	err := ValidateTransition(a, model.AppointmentStatusNoShow, at(14, 0))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))

	assert.NoError(t, ValidateTransition(a, model.AppointmentStatusNoShow, at(15, 30)))
}

func TestValidateTransitionNoShowOnlyFromEarlyStates(t *testing.T) {
	now := at(16, 0)
	a := &model.Appointment{Status: model.AppointmentStatusInProgress, StartTime: at(15, 0)}
	err := ValidateTransition(a, model.AppointmentStatusNoShow, now)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}

func TestValidateTransitionSkippingStatesRejected(t *testing.T) {
	now := at(12, 0)
	a := &model.Appointment{Status: model.AppointmentStatusScheduled, StartTime: at(10, 0)}
	err := ValidateTransition(a, model.AppointmentStatusCompleted, now)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}

func TestValidateTransitionSameStatusRejected(t *testing.T) {
	a := &model.Appointment{Status: model.AppointmentStatusScheduled, StartTime: at(10, 0)}
	err := ValidateTransition(a, model.AppointmentStatusScheduled, at(12, 0))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrUnprocessable))
}
