package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/recurrence"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type ExceptionService struct {
	logger      *slog.Logger
	events      *EventService
	exceptions  ExceptionStore
	occurrences *OccurrenceService
	locks       *ownerLocks
}

// ParseExceptionDate reads a calendar day, or an instant whose day in the
// zone of event is used.
func ParseExceptionDate(event *models.Event, value string) (timeutil.Date, error) {
	if date, err := timeutil.ParseDate(value); err == nil {
		return date, nil
	}

	t, err := timeutil.ParseInstant(value, event.Location())
	if err != nil {
		return timeutil.Date{}, fmt.Errorf(
			"%w: %w",
			models.ErrInvalidOccurrenceReference,
			err,
		)
	}

	return timeutil.DateOf(t, event.Location()), nil
}

// ApplyException records a deletion or reschedule of the occurrence of
// eventID on the requested day, replacing an earlier exception for that day.
func (service *ExceptionService) ApplyException(
	ctx context.Context,
	eventID string,
	ownerID string,
	applyExceptionDto *dtos.ApplyExceptionDto,
) (*models.Exception, error) {
	event, err := service.events.Get(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	date, err := ParseExceptionDate(event, applyExceptionDto.ExceptionDate)
	if err != nil {
		return nil, err
	}

	if !recurrence.Matches(*event, date) {
		return nil, fmt.Errorf(
			"%w: %s has no occurrence on %s",
			models.ErrInvalidOccurrenceReference,
			event.Title,
			date,
		)
	}

	//nolint:exhaustruct //new times are assigned below
	exception := models.Exception{
		ID:        uuid.NewString(),
		EventID:   event.ID,
		Date:      date,
		IsDeleted: applyExceptionDto.IsDeleted,
	}

	exception.NewStart, err = optionalInstant(
		"newStartTime",
		applyExceptionDto.NewStart,
		event.Location(),
	)
	if err != nil {
		return nil, err
	}

	exception.NewEnd, err = optionalInstant(
		"newEndTime",
		applyExceptionDto.NewEnd,
		event.Location(),
	)
	if err != nil {
		return nil, err
	}

	if err = exception.Validate(); err != nil {
		return nil, err
	}

	unlock := service.locks.lock(event.OwnerID)
	defer unlock()

	if exception.IsReschedule() && event.OwnerID != nil {
		err = service.occurrences.ensureOccurrenceMovable(
			ctx,
			*event.OwnerID,
			models.Interval{Start: *exception.NewStart, End: *exception.NewEnd},
			event.ID,
			date,
		)
		if err != nil {
			return nil, err
		}
	}

	if err = service.exceptions.Upsert(ctx, &exception); err != nil {
		return nil, err
	}

	return &exception, nil
}

func (service *ExceptionService) List(
	ctx context.Context,
	eventID string,
	ownerID string,
) ([]models.Exception, error) {
	event, err := service.events.Get(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	return service.exceptions.GetByEventID(ctx, event.ID)
}

// Remove deletes the exception on date, restoring the natural occurrence.
func (service *ExceptionService) Remove(
	ctx context.Context,
	eventID string,
	ownerID string,
	date timeutil.Date,
) error {
	event, err := service.events.Get(ctx, eventID, ownerID)
	if err != nil {
		return err
	}

	return service.exceptions.Delete(ctx, event.ID, date)
}

// NextOccurrence returns the first occurrence of eventID after the instant.
func (service *ExceptionService) NextOccurrence(
	ctx context.Context,
	eventID string,
	ownerID string,
	after time.Time,
) (*models.Occurrence, error) {
	event, err := service.events.Get(ctx, eventID, ownerID)
	if err != nil {
		return nil, err
	}

	exceptions, err := service.exceptions.GetByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	return service.occurrences.NextOccurrence(event, exceptions, after)
}

// RemoveStale deletes exceptions of ownerID whose day no longer matches
// the rule of their event and returns how many were removed.
func (service *ExceptionService) RemoveStale(
	ctx context.Context,
	ownerID string,
) (int, error) {
	events, err := service.events.events.GetAllWithExceptions(ctx, models.OwnedBy(ownerID))
	if err != nil {
		return 0, err
	}

	service.occurrences.warnDuplicates(events)

	stale := []string{}
	for _, event := range events {
		for _, exception := range event.Exceptions {
			if recurrence.Matches(event.Event, exception.Date) {
				continue
			}

			service.logger.Debug(
				"removing stale exception",
				slog.String("event", event.Event.ID),
				slog.String("date", exception.Date.String()),
			)
			stale = append(stale, exception.ID)
		}
	}

	if err = service.exceptions.DeleteByIDs(ctx, stale); err != nil {
		return 0, err
	}

	return len(stale), nil
}

// RemoveAllStale runs RemoveStale for every owner that has events.
func (service *ExceptionService) RemoveAllStale(ctx context.Context) (int, error) {
	owners, err := service.events.events.GetOwnerIDs(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, ownerID := range owners {
		removed, removeErr := service.RemoveStale(ctx, ownerID)
		if removeErr != nil {
			return total, removeErr
		}
		total += removed
	}

	return total, nil
}

func optionalInstant(
	field string,
	value *string,
	loc *time.Location,
) (*time.Time, error) {
	if value == nil {
		return nil, nil //nolint:nilnil //absent value
	}

	t, err := timeutil.ParseInstant(*value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", models.ErrInvalidException, field, err)
	}

	return &t, nil
}
