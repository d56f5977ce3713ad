package scheduling

import "time"

// Candidates generates the ordered start times a service of the given
// duration could occupy on date, ignoring existing bookings. The sequence
// is empty (never an error) when the shop is closed that weekday, the
// date is in the past, or no start fits the window. For today, starts
// that have already elapsed relative to now are excluded.
func (c *Calendar) Candidates(date time.Time, duration time.Duration, now time.Time) []time.Time {
	if !c.IsOpenDay(date) {
		return nil
	}

	day := c.Midnight(date)
	today := c.Midnight(now)
	if day.Before(today) {
		return nil
	}

	open, close := c.OpenWindow(day)

	var candidates []time.Time
	for start := open; !start.Add(duration).After(close); start = start.Add(c.Granularity()) {
		if day.Equal(today) && !start.After(now) {
			continue
		}
		candidates = append(candidates, start)
	}
	return candidates
}
