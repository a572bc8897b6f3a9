package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/xdoubleu/essentia/v2/pkg/database"
	"planner.xdoubleu.com/apps/calendar/internal/dtos"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type EventService struct {
	defaultTimezone string
	events          EventStore
	occurrences     *OccurrenceService
	locks           *ownerLocks
}

// canAccess reports whether ownerID may see and change event. Events
// without an owner are shared.
func canAccess(event *models.Event, ownerID string) bool {
	return event.OwnerID == nil || *event.OwnerID == ownerID
}

func (service *EventService) Get(
	ctx context.Context,
	id string,
	ownerID string,
) (*models.Event, error) {
	event, err := service.events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !canAccess(event, ownerID) {
		return nil, database.ErrResourceNotFound
	}

	return event, nil
}

func (service *EventService) List(
	ctx context.Context,
	filter models.OwnerFilter,
) ([]models.Event, error) {
	return service.events.GetAll(ctx, filter)
}

// Create stores a new event. Owned events are checked against the other
// occurrences of their owner first.
func (service *EventService) Create(
	ctx context.Context,
	ownerID *string,
	createEventDto *dtos.CreateEventDto,
) (*models.Event, error) {
	zone := createEventDto.Timezone
	if zone == "" {
		zone = service.defaultTimezone
	}

	loc, err := timeutil.LoadZone(zone)
	if err != nil {
		return nil, err
	}

	start, end, err := parseRange(createEventDto.Start, createEventDto.End, loc)
	if err != nil {
		return nil, err
	}

	pattern, err := models.ParsePattern(
		createEventDto.RecurrencePattern,
		createEventDto.RecurrenceDays,
	)
	if err != nil {
		return nil, err
	}

	//nolint:exhaustruct //timestamps are set by the store
	event := models.Event{
		ID:          uuid.NewString(),
		OwnerID:     ownerID,
		Title:       createEventDto.Title,
		Description: createEventDto.Description,
		Start:       start,
		End:         end,
		Timezone:    zone,
		Pattern:     pattern,
		Color:       createEventDto.Color,
	}

	if err = event.Validate(); err != nil {
		return nil, err
	}

	unlock := service.locks.lock(ownerID)
	defer unlock()

	if ownerID != nil {
		err = service.occurrences.ensureNoConflict(ctx, *ownerID, event.Interval(), nil)
		if err != nil {
			return nil, err
		}
	}

	if err = service.events.Create(ctx, &event); err != nil {
		return nil, err
	}

	return &event, nil
}

// Update merges the set fields into the event. The conflict check is re-run,
// ignoring the event itself, whenever its timing changed.
func (service *EventService) Update(
	ctx context.Context,
	id string,
	ownerID string,
	updateEventDto *dtos.UpdateEventDto,
) (*models.Event, error) {
	event, err := service.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	original := *event

	if updateEventDto.Title != nil {
		event.Title = *updateEventDto.Title
	}

	if updateEventDto.Description != nil {
		event.Description = updateEventDto.Description
		if *updateEventDto.Description == "" {
			event.Description = nil
		}
	}

	if updateEventDto.Color != nil {
		event.Color = *updateEventDto.Color
	}

	if updateEventDto.Timezone != nil {
		event.Timezone = *updateEventDto.Timezone
	}

	loc, err := timeutil.LoadZone(event.Timezone)
	if err != nil {
		return nil, err
	}

	if updateEventDto.Start != nil {
		event.Start, err = parseInstant("start", *updateEventDto.Start, loc)
		if err != nil {
			return nil, err
		}
	}

	if updateEventDto.End != nil {
		event.End, err = parseInstant("end", *updateEventDto.End, loc)
		if err != nil {
			return nil, err
		}
	}

	if updateEventDto.RecurrencePattern != nil || updateEventDto.RecurrenceDays != nil {
		kind := string(event.Recurrence().Kind())
		if updateEventDto.RecurrencePattern != nil {
			kind = *updateEventDto.RecurrencePattern
		}

		days := updateEventDto.RecurrenceDays
		if days == nil {
			days = models.WeekdayIndices(event.Recurrence())
		}

		event.Pattern, err = models.ParsePattern(kind, days)
		if err != nil {
			return nil, err
		}
	}

	if err = event.Validate(); err != nil {
		return nil, err
	}

	unlock := service.locks.lock(event.OwnerID)
	defer unlock()

	timingChanged := !original.Start.Equal(event.Start) ||
		!original.End.Equal(event.End) ||
		original.Timezone != event.Timezone ||
		!models.EqualPatterns(original.Recurrence(), event.Recurrence())

	if timingChanged && event.OwnerID != nil {
		err = service.occurrences.ensureNoConflict(
			ctx,
			*event.OwnerID,
			event.Interval(),
			&event.ID,
		)
		if err != nil {
			return nil, err
		}
	}

	if err = service.events.Update(ctx, event); err != nil {
		return nil, err
	}

	return event, nil
}

func (service *EventService) Delete(
	ctx context.Context,
	id string,
	ownerID string,
) error {
	event, err := service.Get(ctx, id, ownerID)
	if err != nil {
		return err
	}

	return service.events.Delete(ctx, event.ID)
}

func parseInstant(field string, value string, loc *time.Location) (time.Time, error) {
	t, err := timeutil.ParseInstant(value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s: %w", models.ErrInvalidTimeRange, field, err)
	}
	return t, nil
}

func parseRange(
	startValue string,
	endValue string,
	loc *time.Location,
) (time.Time, time.Time, error) {
	start, err := parseInstant("start", startValue, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	end, err := parseInstant("end", endValue, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return start, end, nil
}
