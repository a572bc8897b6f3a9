package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"github.com/xdoubleu/essentia/v2/pkg/logging"
	"github.com/xdoubleu/essentia/v2/pkg/threading"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/mocks"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/services"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
	"planner.xdoubleu.com/internal/config"
)

const ownerID = "4001e9cf-3fbe-4b09-863f-bd1654cfbf76"

func newServices(t *testing.T) (*services.Services, *mocks.MemoryCalendar) {
	t.Helper()

	logger := logging.NewNopLogger()

	//nolint:exhaustruct //only the relevant fields
	cfg := config.Config{
		WebURL: "http://localhost:8000",
		Calendar: config.CalendarConfig{
			DefaultTimezone: "UTC",
			WeekStart:       "monday",
			ScanPaddingDays: 365,
			ConflictPadding: 24 * time.Hour,
			FeedHorizon:     12 * 7 * 24 * time.Hour,
		},
	}

	memory := mocks.NewMemoryCalendar()
	s := services.New(
		logger,
		cfg,
		threading.NewJobQueue(logger, 1, 10),
		services.Stores{
			Events:     memory.Events,
			Exceptions: memory.Exceptions,
			Feeds:      memory.Feeds,
		},
		mocks.NewMockRemoteClient(),
		nil,
	)

	return s, memory
}

func owner() *string {
	id := ownerID
	return &id
}

// createStandup stores the weekly Monday 09:00-10:00 UTC event.
func createStandup(t *testing.T, s *services.Services) *models.Event {
	t.Helper()

	//nolint:exhaustruct //only the relevant fields
	event, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title:             "Standup",
		Start:             "2024-01-01T09:00:00Z",
		End:               "2024-01-01T10:00:00Z",
		RecurrencePattern: "weekly",
		RecurrenceDays:    []int{1},
	})
	require.Nil(t, err)

	return event
}

func TestCreateEventRejectsConflict(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	//nolint:exhaustruct //only the relevant fields
	candidate := &dtos.CreateEventDto{
		Title: "Call",
		Start: "2024-01-08T09:30:00Z",
		End:   "2024-01-08T09:45:00Z",
	}

	_, err := s.Events.Create(context.Background(), owner(), candidate)
	require.ErrorIs(t, err, models.ErrConflict)

	var conflictErr *models.ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(
		t,
		models.OccurrenceID(standup.ID, timeutil.NewDate(2024, 1, 8)),
		conflictErr.Occurrence.ID,
	)

	//nolint:exhaustruct //deletion
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-08", IsDeleted: true},
	)
	require.Nil(t, err)

	_, err = s.Events.Create(context.Background(), owner(), candidate)
	assert.Nil(t, err)
}

func TestCreateEventWithoutOwnerSkipsConflictCheck(t *testing.T) {
	s, _ := newServices(t)
	createStandup(t, s)

	//nolint:exhaustruct //only the relevant fields
	event, err := s.Events.Create(context.Background(), nil, &dtos.CreateEventDto{
		Title: "Shared",
		Start: "2024-01-08T09:30:00Z",
		End:   "2024-01-08T09:45:00Z",
	})
	require.Nil(t, err)
	assert.Nil(t, event.OwnerID)
	assert.Equal(t, "UTC", event.Timezone)
}

func TestCreateEventInvalid(t *testing.T) {
	s, _ := newServices(t)

	tests := []struct {
		name string
		dto  dtos.CreateEventDto
		err  error
	}{
		{
			name: "end before start",
			//nolint:exhaustruct //only the relevant fields
			dto: dtos.CreateEventDto{
				Title: "Backwards",
				Start: "2024-01-01T10:00:00Z",
				End:   "2024-01-01T09:00:00Z",
			},
			err: models.ErrInvalidTimeRange,
		},
		{
			name: "weekly without days",
			//nolint:exhaustruct //only the relevant fields
			dto: dtos.CreateEventDto{
				Title:             "Empty",
				Start:             "2024-01-01T09:00:00Z",
				End:               "2024-01-01T10:00:00Z",
				RecurrencePattern: "weekly",
			},
			err: models.ErrInvalidRecurrenceRule,
		},
		{
			name: "unknown zone",
			//nolint:exhaustruct //only the relevant fields
			dto: dtos.CreateEventDto{
				Title:    "Elsewhere",
				Start:    "2024-01-01T09:00",
				End:      "2024-01-01T10:00",
				Timezone: "Mars/Olympus",
			},
			err: timeutil.ErrUnknownZone,
		},
		{
			name: "malformed start",
			//nolint:exhaustruct //only the relevant fields
			dto: dtos.CreateEventDto{
				Title: "Garbage",
				Start: "tomorrow",
				End:   "2024-01-01T10:00:00Z",
			},
			err: models.ErrInvalidTimeRange,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Events.Create(context.Background(), owner(), &tt.dto)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestCreateEventWallClockInZone(t *testing.T) {
	s, _ := newServices(t)

	//nolint:exhaustruct //only the relevant fields
	event, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title:    "Breakfast",
		Start:    "2024-07-01T08:00",
		End:      "2024-07-01T09:00",
		Timezone: "Europe/Brussels",
	})
	require.Nil(t, err)
	assert.Equal(t, 6, event.Start.UTC().Hour())
}

func TestUpdateEventIgnoresItself(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	start := "2024-01-01T09:15:00Z"
	end := "2024-01-01T10:15:00Z"
	title := "Daily standup"

	//nolint:exhaustruct //only the relevant fields
	updated, err := s.Events.Update(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.UpdateEventDto{Title: &title, Start: &start, End: &end},
	)
	require.Nil(t, err)
	assert.Equal(t, "Daily standup", updated.Title)
	assert.Equal(t, 15, updated.Start.Minute())
	assert.Equal(t, []int{1}, models.WeekdayIndices(updated.Recurrence()))
}

func TestUpdateEventRejectsConflict(t *testing.T) {
	s, _ := newServices(t)
	createStandup(t, s)

	//nolint:exhaustruct //only the relevant fields
	review, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title:             "Review",
		Start:             "2024-01-02T09:00:00Z",
		End:               "2024-01-02T10:00:00Z",
		RecurrencePattern: "weekly",
		RecurrenceDays:    []int{2},
	})
	require.Nil(t, err)

	start := "2024-01-01T09:30:00Z"
	end := "2024-01-01T10:30:00Z"

	//nolint:exhaustruct //only the relevant fields
	_, err = s.Events.Update(
		context.Background(),
		review.ID,
		ownerID,
		&dtos.UpdateEventDto{Start: &start, End: &end, RecurrenceDays: []int{1, 2}},
	)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestEventsOfOtherOwnersAreHidden(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	_, err := s.Events.Get(context.Background(), standup.ID, "someone-else")
	assert.ErrorIs(t, err, database.ErrResourceNotFound)

	err = s.Events.Delete(context.Background(), standup.ID, "someone-else")
	assert.ErrorIs(t, err, database.ErrResourceNotFound)

	err = s.Events.Delete(context.Background(), standup.ID, ownerID)
	assert.Nil(t, err)

	events, err := s.Events.List(context.Background(), models.OwnedBy(ownerID))
	require.Nil(t, err)
	assert.Empty(t, events)
}

func TestApplyExceptionOnDayWithoutOccurrence(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	//nolint:exhaustruct //deletion
	_, err := s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-09", IsDeleted: true},
	)
	assert.ErrorIs(t, err, models.ErrInvalidOccurrenceReference)
}

func TestApplyExceptionReplacesEarlierOne(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	//nolint:exhaustruct //deletion
	_, err := s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-15", IsDeleted: true},
	)
	require.Nil(t, err)

	newStart := "2024-01-15T14:00:00Z"
	newEnd := "2024-01-15T15:00:00Z"
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{
			ExceptionDate: "2024-01-15T09:00:00Z",
			IsDeleted:     false,
			NewStart:      &newStart,
			NewEnd:        &newEnd,
		},
	)
	require.Nil(t, err)

	exceptions, err := s.Exceptions.List(context.Background(), standup.ID, ownerID)
	require.Nil(t, err)
	require.Len(t, exceptions, 1)
	assert.False(t, exceptions[0].IsDeleted)

	occurrences, err := s.Occurrences.GetOccurrences(
		context.Background(),
		models.OwnedBy(ownerID),
		models.Interval{
			Start: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC),
		},
		time.UTC,
	)
	require.Nil(t, err)
	require.Len(t, occurrences, 1)
	assert.True(t, occurrences[0].IsException)
	assert.Equal(t, 14, occurrences[0].Start.Hour())

	err = s.Exceptions.Remove(
		context.Background(),
		standup.ID,
		ownerID,
		timeutil.NewDate(2024, 1, 15),
	)
	require.Nil(t, err)

	err = s.Exceptions.Remove(
		context.Background(),
		standup.ID,
		ownerID,
		timeutil.NewDate(2024, 1, 15),
	)
	assert.ErrorIs(t, err, database.ErrResourceNotFound)
}

func TestApplyExceptionRejectsHalfReschedule(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	newStart := "2024-01-15T14:00:00Z"

	//nolint:exhaustruct //only the relevant fields
	_, err := s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-15", NewStart: &newStart},
	)
	assert.ErrorIs(t, err, models.ErrInvalidException)
}

func TestRescheduleIntoOtherEventConflicts(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)

	//nolint:exhaustruct //only the relevant fields
	_, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title: "Dentist",
		Start: "2024-01-10T13:00:00Z",
		End:   "2024-01-10T14:00:00Z",
	})
	require.Nil(t, err)

	newStart := "2024-01-10T13:30:00Z"
	newEnd := "2024-01-10T14:30:00Z"
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{
			ExceptionDate: "2024-01-08",
			IsDeleted:     false,
			NewStart:      &newStart,
			NewEnd:        &newEnd,
		},
	)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRescheduleOntoOwnOccurrenceConflicts(t *testing.T) {
	s, _ := newServices(t)

	//nolint:exhaustruct //only the relevant fields
	gym, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title:             "Gym",
		Start:             "2024-01-01T07:00:00Z",
		End:               "2024-01-01T08:00:00Z",
		RecurrencePattern: "daily",
	})
	require.Nil(t, err)

	newStart := "2024-01-16T07:30:00Z"
	newEnd := "2024-01-16T08:30:00Z"
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		gym.ID,
		ownerID,
		&dtos.ApplyExceptionDto{
			ExceptionDate: "2024-01-15",
			IsDeleted:     false,
			NewStart:      &newStart,
			NewEnd:        &newEnd,
		},
	)
	assert.ErrorIs(t, err, models.ErrConflict)

	newStart = "2024-01-15T07:30:00Z"
	newEnd = "2024-01-15T08:30:00Z"
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		gym.ID,
		ownerID,
		&dtos.ApplyExceptionDto{
			ExceptionDate: "2024-01-15",
			IsDeleted:     false,
			NewStart:      &newStart,
			NewEnd:        &newEnd,
		},
	)
	assert.Nil(t, err)
}

func TestNextOccurrence(t *testing.T) {
	s, _ := newServices(t)
	standup := createStandup(t, s)
	after := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	next, err := s.Exceptions.NextOccurrence(context.Background(), standup.ID, ownerID, after)
	require.Nil(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC), next.Start.UTC())

	//nolint:exhaustruct //deletion
	_, err = s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-08", IsDeleted: true},
	)
	require.Nil(t, err)

	next, err = s.Exceptions.NextOccurrence(context.Background(), standup.ID, ownerID, after)
	require.Nil(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC), next.Start.UTC())
}

func TestNextOccurrenceOfPastOneTimeEvent(t *testing.T) {
	s, _ := newServices(t)

	//nolint:exhaustruct //only the relevant fields
	event, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
		Title: "Dentist",
		Start: "2024-01-10T13:00:00Z",
		End:   "2024-01-10T14:00:00Z",
	})
	require.Nil(t, err)

	_, err = s.Exceptions.NextOccurrence(
		context.Background(),
		event.ID,
		ownerID,
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
	)
	assert.ErrorIs(t, err, database.ErrResourceNotFound)
}

func TestGetWeek(t *testing.T) {
	s, _ := newServices(t)
	createStandup(t, s)

	brussels, err := time.LoadLocation("Europe/Brussels")
	require.Nil(t, err)

	week, err := s.Occurrences.GetWeek(
		context.Background(),
		models.OwnedBy(ownerID),
		timeutil.NewDate(2024, 1, 10),
		brussels,
	)
	require.Nil(t, err)

	require.Len(t, week.Days, 7)
	assert.Equal(t, timeutil.NewDate(2024, 1, 8), week.Days[0].Date)
	assert.Equal(t, timeutil.NewDate(2024, 1, 14), week.Days[6].Date)
	assert.Equal(t, "Europe/Brussels", week.Timezone)

	require.Len(t, week.Days[0].Occurrences, 1)
	assert.Equal(t, 10, week.Days[0].Occurrences[0].Start.Hour())
	for _, day := range week.Days[1:] {
		assert.Empty(t, day.Occurrences)
	}
}

func TestGetOccurrencesRejectsInvertedWindow(t *testing.T) {
	s, _ := newServices(t)

	_, err := s.Occurrences.GetOccurrences(
		context.Background(),
		models.OwnerFilter{},
		models.Interval{
			Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		time.UTC,
	)
	assert.ErrorIs(t, err, models.ErrInvalidTimeRange)
}

func TestRemoveStaleExceptions(t *testing.T) {
	s, memory := newServices(t)
	standup := createStandup(t, s)

	//nolint:exhaustruct //deletion
	_, err := s.Exceptions.ApplyException(
		context.Background(),
		standup.ID,
		ownerID,
		&dtos.ApplyExceptionDto{ExceptionDate: "2024-01-08", IsDeleted: true},
	)
	require.Nil(t, err)

	//nolint:exhaustruct //deletion
	memory.AddException(models.Exception{
		ID:        "stale",
		EventID:   standup.ID,
		Date:      timeutil.NewDate(2024, 1, 9),
		IsDeleted: true,
	})

	removed, err := s.Exceptions.RemoveStale(context.Background(), ownerID)
	require.Nil(t, err)
	assert.Equal(t, 1, removed)

	exceptions, err := s.Exceptions.List(context.Background(), standup.ID, ownerID)
	require.Nil(t, err)
	require.Len(t, exceptions, 1)
	assert.Equal(t, timeutil.NewDate(2024, 1, 8), exceptions[0].Date)
}

func TestFeedRender(t *testing.T) {
	s, _ := newServices(t)
	createStandup(t, s)
	s.SetClock(func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})

	feed, err := s.Feeds.Create(
		context.Background(),
		ownerID,
		&dtos.CreateFeedDto{Name: "Work"},
	)
	require.Nil(t, err)
	assert.Len(t, feed.Token, 32)

	output, err := s.Feeds.Render(context.Background(), feed.Token)
	require.Nil(t, err)
	assert.Contains(t, output, "X-WR-CALNAME:Work")
	assert.Equal(t, 12, strings.Count(output, "BEGIN:VEVENT"))

	err = s.Feeds.Delete(context.Background(), feed.Token, "someone-else")
	assert.ErrorIs(t, err, database.ErrResourceNotFound)

	err = s.Feeds.Delete(context.Background(), feed.Token, ownerID)
	require.Nil(t, err)

	_, err = s.Feeds.Render(context.Background(), feed.Token)
	assert.ErrorIs(t, err, database.ErrResourceNotFound)
}

func TestImport(t *testing.T) {
	s, _ := newServices(t)
	createStandup(t, s)

	document := strings.Join([]string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:-//test//test//EN",
		"BEGIN:VEVENT",
		"UID:gym",
		"SUMMARY:Gym",
		"DTSTART:20240103T070000Z",
		"DTEND:20240103T080000Z",
		"RRULE:FREQ=WEEKLY;BYDAY=WE",
		"EXDATE:20240110T070000Z,20240111T070000Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:clash",
		"SUMMARY:Clash",
		"DTSTART:20240108T093000Z",
		"DTEND:20240108T094500Z",
		"END:VEVENT",
		"BEGIN:VEVENT",
		"UID:monthly",
		"SUMMARY:Monthly",
		"DTSTART:20240201T093000Z",
		"DTEND:20240201T094500Z",
		"RRULE:FREQ=MONTHLY",
		"END:VEVENT",
		"END:VCALENDAR",
		"",
	}, "\r\n")

	result, err := s.Import.Import(context.Background(), ownerID, strings.NewReader(document))
	require.Nil(t, err)

	require.Len(t, result.Created, 1)
	assert.Equal(t, "Gym", result.Created[0].Title)

	require.Len(t, result.Skipped, 2)
	reasons := map[string]string{}
	for _, skipped := range result.Skipped {
		reasons[skipped.UID] = skipped.Reason
	}
	assert.Contains(t, reasons["clash"], models.ErrConflict.Error())
	assert.Contains(t, reasons, "monthly")

	exceptions, err := s.Exceptions.List(context.Background(), result.Created[0].ID, ownerID)
	require.Nil(t, err)
	require.Len(t, exceptions, 1)
	assert.Equal(t, timeutil.NewDate(2024, 1, 10), exceptions[0].Date)
	assert.True(t, exceptions[0].IsDeleted)
}

func TestImportURL(t *testing.T) {
	s, _ := newServices(t)

	result, err := s.Import.ImportURL(
		context.Background(),
		ownerID,
		"https://calendar.example.com/team.ics",
	)
	require.Nil(t, err)
	require.Len(t, result.Created, 1)
	assert.Equal(t, "Retro", result.Created[0].Title)
	assert.Equal(t, []int{5}, models.WeekdayIndices(result.Created[0].Recurrence()))

	_, err = s.Import.ImportURL(context.Background(), ownerID, "ftp://example.com")
	assert.Error(t, err)
}

func TestConcurrentCreatesAdmitOneOverlap(t *testing.T) {
	s, _ := newServices(t)

	const attempts = 8

	var wg sync.WaitGroup
	errs := make(chan error, attempts)

	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()

			//nolint:exhaustruct //only the relevant fields
			_, err := s.Events.Create(context.Background(), owner(), &dtos.CreateEventDto{
				Title: fmt.Sprintf("Booking %d", i),
				Start: "2024-04-02T10:00:00Z",
				End:   "2024-04-02T11:00:00Z",
			})
			errs <- err
		}()
	}

	wg.Wait()
	close(errs)

	created := 0
	for err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, models.ErrConflict)
	}
	assert.Equal(t, 1, created)
}
