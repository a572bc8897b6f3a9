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

func detector() recurrence.Detector {
	return recurrence.NewDetector(recurrence.NewGenerator(0), 0)
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, 1, day, hour, minute, 0, 0, time.UTC)
}

func TestConflictWithWeeklyOccurrence(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: *mondayEvent(t)}}
	candidate := models.Interval{Start: at(8, 9, 30), End: at(8, 9, 45)}

	occurrence, ok := detector().FindConflict(events, candidate, nil)
	require.True(t, ok)
	assert.Equal(t, "standup_2024-01-08", occurrence.ID)

	//nolint:exhaustruct //only the relevant fields
	events[0].Exceptions = []models.Exception{{
		ID:        "skip",
		Date:      timeutil.NewDate(2024, 1, 8),
		IsDeleted: true,
	}}
	assert.False(t, detector().HasConflict(events, candidate, nil))
}

func TestConflictTouchingIsNotAConflict(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: *mondayEvent(t)}}

	assert.False(t, detector().HasConflict(
		events,
		models.Interval{Start: at(8, 10, 0), End: at(8, 11, 0)},
		nil,
	))
	assert.False(t, detector().HasConflict(
		events,
		models.Interval{Start: at(8, 8, 0), End: at(8, 9, 0)},
		nil,
	))
	assert.True(t, detector().HasConflict(
		events,
		models.Interval{Start: at(8, 8, 0), End: at(8, 9, 1)},
		nil,
	))
}

func TestConflictExcludesEvent(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: *mondayEvent(t)}}
	candidate := models.Interval{Start: at(8, 9, 0), End: at(8, 10, 0)}

	exclude := "standup"
	assert.False(t, detector().HasConflict(events, candidate, &exclude))

	other := "other"
	assert.True(t, detector().HasConflict(events, candidate, &other))
}

func TestOccurrenceConflictIgnoresOnlyTheMovedOccurrence(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: models.Event{
		ID:       "gym",
		Start:    at(1, 7, 0),
		End:      at(1, 8, 0),
		Timezone: "UTC",
		Pattern:  models.Daily{},
	}}}
	candidate := models.Interval{Start: at(16, 7, 30), End: at(16, 8, 30)}

	occurrence, ok := detector().FindOccurrenceConflict(
		events,
		candidate,
		"gym",
		timeutil.NewDate(2024, 1, 15),
	)
	require.True(t, ok)
	assert.Equal(t, timeutil.NewDate(2024, 1, 16), occurrence.Date)

	assert.False(t, detector().HasConflict(events, candidate, &events[0].Event.ID))

	_, ok = detector().FindOccurrenceConflict(
		events,
		candidate,
		"gym",
		timeutil.NewDate(2024, 1, 16),
	)
	assert.False(t, ok)
}

func TestConflictWithOneTimeEvent(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: models.Event{
		ID:    "dentist",
		Start: at(10, 13, 0),
		End:   at(10, 14, 0),
	}}}

	occurrence, ok := detector().FindConflict(
		events,
		models.Interval{Start: at(10, 13, 59), End: at(10, 15, 0)},
		nil,
	)
	require.True(t, ok)
	assert.Equal(t, "dentist", occurrence.EventID)
	assert.Equal(t, at(10, 13, 0), occurrence.Start)

	assert.False(t, detector().HasConflict(
		events,
		models.Interval{Start: at(10, 14, 0), End: at(10, 15, 0)},
		nil,
	))
}

func TestConflictWithLongOccurrenceStartingEarlier(t *testing.T) {
	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: models.Event{
		ID:      "retreat",
		Start:   at(1, 8, 0),
		End:     at(3, 20, 0),
		Pattern: models.Daily{},
	}}}

	// the occurrence of the 5th runs until the 7th
	assert.True(t, detector().HasConflict(
		events,
		models.Interval{Start: at(7, 19, 0), End: at(7, 19, 30)},
		nil,
	))
}

func TestConflictWithRescheduledOccurrence(t *testing.T) {
	newStart := at(9, 15, 0)
	newEnd := at(9, 16, 0)

	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{
		Event: *mondayEvent(t),
		Exceptions: []models.Exception{{
			ID:       "moved",
			Date:     timeutil.NewDate(2024, 1, 8),
			NewStart: &newStart,
			NewEnd:   &newEnd,
		}},
	}}

	assert.False(t, detector().HasConflict(
		events,
		models.Interval{Start: at(8, 9, 0), End: at(8, 10, 0)},
		nil,
	))

	occurrence, ok := detector().FindConflict(
		events,
		models.Interval{Start: at(9, 15, 30), End: at(9, 17, 0)},
		nil,
	)
	require.True(t, ok)
	assert.True(t, occurrence.IsException)
}

func TestConflictShortCircuitsOnFirstEvent(t *testing.T) {
	first := *mondayEvent(t)
	second := first
	second.ID = "copy"

	//nolint:exhaustruct //only the relevant fields
	events := []models.EventWithExceptions{{Event: first}, {Event: second}}

	occurrence, ok := detector().FindConflict(
		events,
		models.Interval{Start: at(15, 9, 0), End: at(15, 9, 30)},
		nil,
	)
	require.True(t, ok)
	assert.Equal(t, "standup", occurrence.EventID)
}
