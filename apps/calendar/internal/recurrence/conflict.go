package recurrence

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

const DefaultConflictPadding = 24 * time.Hour

// Detector finds occurrences overlapping a candidate interval.
type Detector struct {
	generator Generator
	padding   time.Duration
}

func NewDetector(generator Generator, padding time.Duration) Detector {
	if padding <= 0 {
		padding = DefaultConflictPadding
	}

	return Detector{
		generator: generator,
		padding:   padding,
	}
}

// FindConflict returns the first occurrence of events that overlaps
// candidate, ignoring the event with ID excludeEventID when set. Occurrences
// that only touch the candidate do not conflict.
func (detector Detector) FindConflict(
	events []models.EventWithExceptions,
	candidate models.Interval,
	excludeEventID *string,
) (models.Occurrence, bool) {
	return detector.find(events, candidate, func(occurrence models.Occurrence) bool {
		return excludeEventID != nil && occurrence.EventID == *excludeEventID
	})
}

// FindOccurrenceConflict is FindConflict for moving a single occurrence: only
// the occurrence of eventID on its natural day date is ignored, the other
// occurrences of the event still count.
func (detector Detector) FindOccurrenceConflict(
	events []models.EventWithExceptions,
	candidate models.Interval,
	eventID string,
	date timeutil.Date,
) (models.Occurrence, bool) {
	return detector.find(events, candidate, func(occurrence models.Occurrence) bool {
		return occurrence.EventID == eventID && occurrence.Date == date
	})
}

func (detector Detector) find(
	events []models.EventWithExceptions,
	candidate models.Interval,
	skip func(models.Occurrence) bool,
) (models.Occurrence, bool) {
	for i := range events {
		event := &events[i].Event

		if !event.IsRecurring() && len(events[i].Exceptions) == 0 {
			occurrence := NaturalOccurrence(event, event.StartDate())
			if !skip(occurrence) && occurrence.Interval().Overlaps(candidate) {
				return occurrence, true
			}
			continue
		}

		// an occurrence starting up to its own duration before the candidate
		// can still reach into it
		window := candidate.Pad(detector.padding+event.Duration(), detector.padding)
		for occurrence := range detector.generator.Expand(event, events[i].Exceptions, window) {
			if skip(occurrence) {
				continue
			}

			if occurrence.Interval().Overlaps(candidate) {
				return occurrence, true
			}
		}
	}

	return models.Occurrence{}, false
}

func (detector Detector) HasConflict(
	events []models.EventWithExceptions,
	candidate models.Interval,
	excludeEventID *string,
) bool {
	_, ok := detector.FindConflict(events, candidate, excludeEventID)
	return ok
}
