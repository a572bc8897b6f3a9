package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/database"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/recurrence"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type OccurrenceService struct {
	logger    *slog.Logger
	events    EventStore
	generator recurrence.Generator
	detector  recurrence.Detector
	weekStart time.Weekday
}

// GetOccurrences expands the events selected by filter over the closed
// window. The result is sorted by start and its instants are presented in loc.
func (service *OccurrenceService) GetOccurrences(
	ctx context.Context,
	filter models.OwnerFilter,
	window models.Interval,
	loc *time.Location,
) ([]models.Occurrence, error) {
	if window.End.Before(window.Start) {
		return nil, models.ErrInvalidTimeRange
	}

	events, err := service.events.GetAllWithExceptions(ctx, filter)
	if err != nil {
		return nil, err
	}

	service.warnDuplicates(events)

	occurrences := service.generator.ExpandAll(events, window)
	for i := range occurrences {
		occurrences[i] = occurrences[i].In(loc)
	}

	return occurrences, nil
}

// GetWeek returns the week containing day for a viewer in loc, grouped per
// calendar day of the viewer.
func (service *OccurrenceService) GetWeek(
	ctx context.Context,
	filter models.OwnerFilter,
	day timeutil.Date,
	loc *time.Location,
) (*models.Week, error) {
	start, end := timeutil.WeekBounds(day.StartIn(loc), loc, service.weekStart)

	occurrences, err := service.GetOccurrences(
		ctx,
		filter,
		models.Interval{Start: start, End: end},
		loc,
	)
	if err != nil {
		return nil, err
	}

	week := models.Week{
		Start:    start,
		End:      end,
		Timezone: loc.String(),
		Days:     []models.Day{},
	}

	index := map[timeutil.Date]int{}
	first := timeutil.DateOf(start, loc)
	days := timeutil.DateRange{From: first, To: timeutil.DateOf(end, loc)}
	for date := range days.All() {
		index[date] = len(week.Days)
		week.Days = append(week.Days, models.Day{
			Date:        date,
			Occurrences: []models.Occurrence{},
		})
	}

	for _, occurrence := range occurrences {
		i, ok := index[timeutil.DateOf(occurrence.Start, loc)]
		if !ok {
			continue
		}
		week.Days[i].Occurrences = append(week.Days[i].Occurrences, occurrence)
	}

	return &week, nil
}

// CheckConflict returns the first occurrence of the events of ownerID that
// overlaps candidate, or nil when there is none.
func (service *OccurrenceService) CheckConflict(
	ctx context.Context,
	ownerID string,
	candidate models.Interval,
	excludeEventID *string,
) (*models.Occurrence, error) {
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	events, err := service.events.GetAllWithExceptions(ctx, models.OwnedBy(ownerID))
	if err != nil {
		return nil, err
	}

	service.warnDuplicates(events)

	occurrence, ok := service.detector.FindConflict(events, candidate, excludeEventID)
	if !ok {
		return nil, nil //nolint:nilnil //no conflict
	}

	return &occurrence, nil
}

func (service *OccurrenceService) HasConflict(
	ctx context.Context,
	ownerID string,
	candidate models.Interval,
	excludeEventID *string,
) (bool, error) {
	occurrence, err := service.CheckConflict(ctx, ownerID, candidate, excludeEventID)
	if err != nil {
		return false, err
	}

	return occurrence != nil, nil
}

// ensureNoConflict turns an overlapping occurrence into a ConflictError.
func (service *OccurrenceService) ensureNoConflict(
	ctx context.Context,
	ownerID string,
	candidate models.Interval,
	excludeEventID *string,
) error {
	occurrence, err := service.CheckConflict(ctx, ownerID, candidate, excludeEventID)
	if err != nil {
		return err
	}

	if occurrence != nil {
		return &models.ConflictError{Occurrence: *occurrence}
	}

	return nil
}

// ensureOccurrenceMovable checks the new interval of the occurrence of
// eventID on date against everything but that occurrence itself.
func (service *OccurrenceService) ensureOccurrenceMovable(
	ctx context.Context,
	ownerID string,
	candidate models.Interval,
	eventID string,
	date timeutil.Date,
) error {
	events, err := service.events.GetAllWithExceptions(ctx, models.OwnedBy(ownerID))
	if err != nil {
		return err
	}

	occurrence, ok := service.detector.FindOccurrenceConflict(
		events,
		candidate,
		eventID,
		date,
	)
	if ok {
		return &models.ConflictError{Occurrence: occurrence}
	}

	return nil
}

// NextOccurrence returns the first occurrence of event that starts strictly
// after the given instant, exceptions included.
func (service *OccurrenceService) NextOccurrence(
	event *models.Event,
	exceptions []models.Exception,
	after time.Time,
) (*models.Occurrence, error) {
	window := models.Interval{
		Start: after.Add(time.Nanosecond),
		End: after.AddDate(
			0,
			0,
			service.generator.PaddingDays,
		),
	}

	for _, occurrence := range service.generator.Occurrences(event, exceptions, window) {
		if occurrence.Start.After(after) {
			return &occurrence, nil
		}
	}

	return nil, database.ErrResourceNotFound
}

func (service *OccurrenceService) warnDuplicates(events []models.EventWithExceptions) {
	for _, event := range events {
		duplicates := recurrence.IndexExceptions(event.Exceptions).Duplicates
		for _, duplicate := range duplicates {
			service.logger.Warn(
				"multiple exceptions recorded for one occurrence",
				slog.String("event", event.Event.ID),
				slog.String("date", duplicate.Date.String()),
				slog.String("ignored", duplicate.ID),
			)
		}
	}
}
