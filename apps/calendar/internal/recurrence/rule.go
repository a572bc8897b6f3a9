// Package recurrence expands events into occurrences, folds recorded
// exceptions into them and detects overlapping occurrences. Everything here
// is a pure function of its inputs.
package recurrence

import (
	"fmt"
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// compiled holds the parts of an event that stay fixed while its days are
// walked, so the authoring zone is resolved once per expansion.
type compiled struct {
	event    *models.Event
	loc      *time.Location
	first    timeutil.Date
	clock    timeutil.Clock
	duration time.Duration
}

func compile(event *models.Event) compiled {
	loc := event.Location()

	return compiled{
		event:    event,
		loc:      loc,
		first:    timeutil.DateOf(event.Start, loc),
		clock:    timeutil.ClockOf(event.Start, loc),
		duration: event.Duration(),
	}
}

func (rule compiled) matches(day timeutil.Date) bool {
	switch pattern := rule.event.Recurrence().(type) {
	case models.OneTime:
		return day == rule.first
	case models.Daily:
		return !day.Before(rule.first)
	case models.Weekly:
		return !day.Before(rule.first) && pattern.Days().Has(day.Weekday())
	default:
		panic(fmt.Sprintf("unhandled recurrence pattern %T", pattern))
	}
}

func (rule compiled) times(day timeutil.Date) (time.Time, time.Time) {
	if _, ok := rule.event.Recurrence().(models.OneTime); ok {
		return rule.event.Start, rule.event.End
	}

	start := day.At(rule.clock, rule.loc)
	return start, start.Add(rule.duration)
}

func (rule compiled) occurrence(day timeutil.Date) models.Occurrence {
	start, end := rule.times(day)

	return models.Occurrence{
		ID:          models.OccurrenceID(rule.event.ID, day),
		EventID:     rule.event.ID,
		Date:        day,
		Start:       start,
		End:         end,
		Event:       rule.event,
		IsException: false,
		ExceptionID: nil,
	}
}

// Matches reports whether the rule of event yields an occurrence on day,
// day being a calendar day in the authoring zone of the event.
func Matches(event models.Event, day timeutil.Date) bool {
	return compile(&event).matches(day)
}

// IsValidOccurrenceDate reports whether the rule yields an occurrence on the
// calendar day on which t falls in the authoring zone of event.
func IsValidOccurrenceDate(event models.Event, t time.Time) bool {
	rule := compile(&event)
	return rule.matches(timeutil.DateOf(t, rule.loc))
}

// OccurrenceTimes computes the natural start and end of the occurrence on
// day. The wall-clock time of event.Start is attached to day in the authoring
// zone first and converted to an instant afterwards; the end keeps the fixed
// duration of the event.
func OccurrenceTimes(event models.Event, day timeutil.Date) (time.Time, time.Time) {
	return compile(&event).times(day)
}

// NaturalOccurrence builds the rule-computed occurrence on day without
// consulting exceptions.
func NaturalOccurrence(event *models.Event, day timeutil.Date) models.Occurrence {
	return compile(event).occurrence(day)
}

// NextAfter returns the natural start of the first occurrence strictly after
// t, looking at most horizonDays calendar days ahead.
func NextAfter(event models.Event, t time.Time, horizonDays int) (time.Time, bool) {
	rule := compile(&event)

	from := timeutil.DateOf(t, rule.loc)
	if from.Before(rule.first) {
		from = rule.first
	}

	days := timeutil.DateRange{From: from, To: from.AddDays(horizonDays)}
	for day := range days.All() {
		if !rule.matches(day) {
			continue
		}

		start, _ := rule.times(day)
		if start.After(t) {
			return start, true
		}
	}

	return time.Time{}, false
}
