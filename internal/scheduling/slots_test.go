package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCandidatesOrderedAndAligned(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC) // Wednesday
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	candidates := cal.Candidates(date, 45*time.Minute, now)
	require.NotEmpty(t, candidates)

	open, close := cal.OpenWindow(date)
	assert.Equal(t, open, candidates[0])
	for i, start := range candidates {
		assert.True(t, cal.IsAligned(start))
		assert.False(t, start.Add(45*time.Minute).After(close))
		if i > 0 {
			assert.True(t, candidates[i-1].Before(start))
		}
	}

	// 09:00 through 18:00 inclusive at 30m steps; 18:30 would end 19:15.
	assert.Len(t, candidates, 19)
	assert.Equal(t, time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC), candidates[len(candidates)-1])
}

func TestCandidatesDurationEqualsWindowTail(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	// A 30m service can start at 18:30 and end exactly at close.
	candidates := cal.Candidates(date, 30*time.Minute, now)
	require.NotEmpty(t, candidates)
	assert.Equal(t, time.Date(2025, 3, 12, 18, 30, 0, 0, time.UTC), candidates[len(candidates)-1])
}

func TestCandidatesClosedDay(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	monday := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 9, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, cal.Candidates(monday, 30*time.Minute, now))
}

func TestCandidatesPastDate(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 13, 8, 0, 0, 0, time.UTC)

	assert.Empty(t, cal.Candidates(date, 30*time.Minute, now))
}

func TestCandidatesTodayExcludesElapsed(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 12, 11, 0, 0, 0, time.UTC)

	candidates := cal.Candidates(date, 30*time.Minute, now)
	require.NotEmpty(t, candidates)

	// 11:00 itself has elapsed (start must be strictly after now).
	assert.Equal(t, time.Date(2025, 3, 12, 11, 30, 0, 0, time.UTC), candidates[0])
	for _, start := range candidates {
		assert.True(t, start.After(now))
	}
}

func TestCandidatesDurationLongerThanWindow(t *testing.T) {
	cal, err := NewCalendar(testHours())
	require.NoError(t, err)

	date := time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, cal.Candidates(date, 11*time.Hour, now))
}
