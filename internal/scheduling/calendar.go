package scheduling

import (
	"fmt"
	"time"

	"github.com/idib19/glamstore-sub001/internal/config"
)

// Date and wall-clock formats used across the scheduling surface.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "15:04"
)

// Calendar holds the fixed weekly schedule: which weekdays the shop is
// open, the daily open window, and the slot granularity. It is immutable
// after construction and safe for concurrent use.
type Calendar struct {
	location    *time.Location
	openDays    map[time.Weekday]bool
	opensMin    int // minutes from midnight
	closesMin   int
	granularity int // minutes
}

// NewCalendar validates the configured schedule and builds the calendar.
// Any violation is a configuration error and should abort startup.
func NewCalendar(cfg config.BusinessHoursConfig) (*Calendar, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid business timezone %q: %w", cfg.Timezone, err)
	}

	if len(cfg.OpenDays) == 0 {
		return nil, fmt.Errorf("business hours: at least one open day is required")
	}
	openDays := make(map[time.Weekday]bool, len(cfg.OpenDays))
	for _, name := range cfg.OpenDays {
		day, err := parseWeekday(name)
		if err != nil {
			return nil, fmt.Errorf("business hours: %w", err)
		}
		openDays[day] = true
	}

	opens, err := parseClockMinutes(cfg.Opens)
	if err != nil {
		return nil, fmt.Errorf("business hours: invalid opening time %q: %w", cfg.Opens, err)
	}
	closes, err := parseClockMinutes(cfg.Closes)
	if err != nil {
		return nil, fmt.Errorf("business hours: invalid closing time %q: %w", cfg.Closes, err)
	}

	if opens >= closes {
		return nil, fmt.Errorf("business hours: opening time %s must be before closing time %s", cfg.Opens, cfg.Closes)
	}
	if cfg.SlotMinutes <= 0 {
		return nil, fmt.Errorf("business hours: slot granularity must be positive, got %d", cfg.SlotMinutes)
	}
	if (closes-opens)%cfg.SlotMinutes != 0 {
		return nil, fmt.Errorf("business hours: granularity %dm does not divide the open window %s-%s evenly",
			cfg.SlotMinutes, cfg.Opens, cfg.Closes)
	}

	return &Calendar{
		location:    loc,
		openDays:    openDays,
		opensMin:    opens,
		closesMin:   closes,
		granularity: cfg.SlotMinutes,
	}, nil
}

// Location returns the business timezone.
func (c *Calendar) Location() *time.Location {
	return c.location
}

// IsOpenDay reports whether the shop takes appointments on the given
// date's weekday.
func (c *Calendar) IsOpenDay(date time.Time) bool {
	return c.openDays[date.In(c.location).Weekday()]
}

// OpenWindow returns the opening and closing instants for the given date
// in the business timezone. The window is meaningful only on open days.
func (c *Calendar) OpenWindow(date time.Time) (time.Time, time.Time) {
	midnight := c.Midnight(date)
	return midnight.Add(time.Duration(c.opensMin) * time.Minute),
		midnight.Add(time.Duration(c.closesMin) * time.Minute)
}

// Granularity returns the slot step.
func (c *Calendar) Granularity() time.Duration {
	return time.Duration(c.granularity) * time.Minute
}

// Midnight normalizes an instant to the start of its calendar day in the
// business timezone.
func (c *Calendar) Midnight(date time.Time) time.Time {
	d := date.In(c.location)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.location)
}

// IsAligned reports whether start sits on a slot boundary, measured from
// opening time.
func (c *Calendar) IsAligned(start time.Time) bool {
	open, _ := c.OpenWindow(start)
	offset := start.Sub(open)
	if offset < 0 {
		return false
	}
	return offset%c.Granularity() == 0
}

// FitsWindow reports whether the interval [start, start+duration] lies
// within the open window of start's day.
func (c *Calendar) FitsWindow(start time.Time, duration time.Duration) bool {
	open, close := c.OpenWindow(start)
	return !start.Before(open) && !start.Add(duration).After(close)
}

// ParseDate parses a YYYY-MM-DD string as midnight in the business
// timezone.
func (c *Calendar) ParseDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateFormat, value, c.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return t, nil
}

// ParseStart combines a date with an HH:MM wall-clock start.
func (c *Calendar) ParseStart(date time.Time, value string) (time.Time, error) {
	minutes, err := parseClockMinutes(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid start time %q: %w", value, err)
	}
	return c.Midnight(date).Add(time.Duration(minutes) * time.Minute), nil
}

func parseClockMinutes(value string) (int, error) {
	t, err := time.Parse(TimeFormat, value)
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}

func parseWeekday(name string) (time.Weekday, error) {
	days := map[string]time.Weekday{
		"Sunday":    time.Sunday,
		"Monday":    time.Monday,
		"Tuesday":   time.Tuesday,
		"Wednesday": time.Wednesday,
		"Thursday":  time.Thursday,
		"Friday":    time.Friday,
		"Saturday":  time.Saturday,
	}
	day, ok := days[name]
	if !ok {
		return 0, fmt.Errorf("unknown weekday %q", name)
	}
	return day, nil
}
