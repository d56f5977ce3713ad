package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/idib19/glamstore-sub001/internal/model"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap: an
// appointment ending at 10:00 never conflicts with one starting at 10:00.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// IsFree decides whether the interval [start, start+duration) is clear of
// every active appointment in existing. Cancelled and no-show rows are
// transparent. excludeID removes an appointment's own row from the
// conflict set, which is how edits revalidate a new time without
// colliding with themselves; pass uuid.Nil for new bookings.
func IsFree(start time.Time, duration time.Duration, existing []*model.Appointment, excludeID uuid.UUID) bool {
	end := start.Add(duration)
	for _, apt := range existing {
		if apt.ID == excludeID {
			continue
		}
		if !apt.Status.IsActive() {
			continue
		}
		if Overlaps(start, end, apt.StartTime, apt.EndTime) {
			return false
		}
	}
	return true
}
