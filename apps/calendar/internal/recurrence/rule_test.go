package recurrence_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/recurrence"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

func TestMatches(t *testing.T) {
	event := *mondayEvent(t)

	assert.True(t, recurrence.Matches(event, timeutil.NewDate(2024, 1, 1)))
	assert.True(t, recurrence.Matches(event, timeutil.NewDate(2024, 6, 3)))
	assert.False(t, recurrence.Matches(event, timeutil.NewDate(2024, 1, 2)))
	assert.False(t, recurrence.Matches(event, timeutil.NewDate(2023, 12, 25)))

	event.Pattern = models.Daily{}
	assert.True(t, recurrence.Matches(event, timeutil.NewDate(2024, 1, 2)))
	assert.False(t, recurrence.Matches(event, timeutil.NewDate(2023, 12, 31)))

	event.Pattern = models.OneTime{}
	assert.True(t, recurrence.Matches(event, timeutil.NewDate(2024, 1, 1)))
	assert.False(t, recurrence.Matches(event, timeutil.NewDate(2024, 1, 8)))
}

func TestIsValidOccurrenceDateUsesEventZone(t *testing.T) {
	event := *mondayEvent(t)
	event.Timezone = "America/New_York"
	event.Start = time.Date(2024, 1, 1, 23, 0, 0, 0, time.UTC)
	event.End = event.Start.Add(time.Hour)

	// Monday 18:00 in New York
	assert.True(t, recurrence.IsValidOccurrenceDate(
		event,
		time.Date(2024, 1, 8, 23, 0, 0, 0, time.UTC),
	))
	// Tuesday in UTC but still Monday in New York
	assert.True(t, recurrence.IsValidOccurrenceDate(
		event,
		time.Date(2024, 1, 9, 2, 0, 0, 0, time.UTC),
	))
	assert.False(t, recurrence.IsValidOccurrenceDate(
		event,
		time.Date(2024, 1, 9, 12, 0, 0, 0, time.UTC),
	))
}

func TestNextAfter(t *testing.T) {
	event := *mondayEvent(t)

	next, ok := recurrence.NextAfter(event, time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC), 30)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), next)

	next, ok = recurrence.NextAfter(event, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), 30)
	require.True(t, ok)
	assert.Equal(t, event.Start, next)

	_, ok = recurrence.NextAfter(event, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), 3)
	assert.False(t, ok)

	event.Pattern = models.OneTime{}
	_, ok = recurrence.NextAfter(event, event.Start, 365)
	assert.False(t, ok)
}

func TestApplyUsesFirstMatch(t *testing.T) {
	event := mondayEvent(t)
	natural := recurrence.NaturalOccurrence(event, timeutil.NewDate(2024, 1, 8))

	newStart := time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)
	newEnd := newStart.Add(time.Hour)

	//nolint:exhaustruct //only the relevant fields
	exceptions := []models.Exception{
		{ID: "other", Date: timeutil.NewDate(2024, 1, 15), IsDeleted: true},
		{ID: "first", Date: timeutil.NewDate(2024, 1, 8), NewStart: &newStart, NewEnd: &newEnd},
		{ID: "second", Date: timeutil.NewDate(2024, 1, 8), IsDeleted: true},
	}

	applied, ok := recurrence.Apply(natural, exceptions)
	require.True(t, ok)
	assert.Equal(t, newStart, applied.Start)
	assert.Equal(t, "first", *applied.ExceptionID)

	index := recurrence.IndexExceptions(exceptions)
	assert.Equal(t, 2, index.Len())
	require.Len(t, index.Duplicates, 1)
	assert.Equal(t, "second", index.Duplicates[0].ID)

	indexed, ok := index.Apply(natural)
	require.True(t, ok)
	assert.Equal(t, applied, indexed)

	untouched, ok := recurrence.Apply(natural, nil)
	require.True(t, ok)
	assert.Equal(t, natural, untouched)
	assert.False(t, untouched.IsException)
}

func TestApplyDeletion(t *testing.T) {
	natural := recurrence.NaturalOccurrence(mondayEvent(t), timeutil.NewDate(2024, 1, 15))

	//nolint:exhaustruct //only the relevant fields
	_, ok := recurrence.Apply(natural, []models.Exception{
		{ID: "skip", Date: timeutil.NewDate(2024, 1, 15), IsDeleted: true},
	})
	assert.False(t, ok)
}
