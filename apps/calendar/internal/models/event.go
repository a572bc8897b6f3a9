package models

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type Event struct {
	ID          string            `json:"id"`
	OwnerID     *string           `json:"ownerId"`
	Title       string            `json:"title"`
	Description *string           `json:"description"`
	Start       time.Time         `json:"start"`
	End         time.Time         `json:"end"`
	Timezone    string            `json:"timezone"`
	Pattern     RecurrencePattern `json:"-"`
	Color       string            `json:"color"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// EventWithExceptions is an event joined with its recorded exceptions.
type EventWithExceptions struct {
	Event      Event
	Exceptions []Exception
}

// Recurrence returns the pattern of the event, OneTime when none was set.
func (event Event) Recurrence() RecurrencePattern {
	if event.Pattern == nil {
		return OneTime{}
	}
	return event.Pattern
}

func (event Event) IsRecurring() bool {
	return event.Recurrence().Kind() != PatternNone
}

func (event Event) Duration() time.Duration {
	return event.End.Sub(event.Start)
}

func (event Event) Interval() Interval {
	return Interval{Start: event.Start, End: event.End}
}

// Location resolves the authoring timezone, UTC when it is empty or unknown.
func (event Event) Location() *time.Location {
	if event.Timezone == "" {
		return time.UTC
	}

	loc, err := timeutil.LoadZone(event.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}

// StartDate is the calendar day of the first occurrence in the authoring zone.
func (event Event) StartDate() timeutil.Date {
	return timeutil.DateOf(event.Start, event.Location())
}

// Validate checks the invariants every stored event must satisfy.
func (event Event) Validate() error {
	if !event.End.After(event.Start) {
		return ErrInvalidTimeRange
	}

	if weekly, ok := event.Recurrence().(Weekly); ok && weekly.Days().IsEmpty() {
		return ErrInvalidRecurrenceRule
	}

	if event.Timezone != "" {
		if _, err := timeutil.LoadZone(event.Timezone); err != nil {
			return err
		}
	}

	return nil
}
