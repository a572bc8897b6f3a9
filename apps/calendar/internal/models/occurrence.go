package models

import (
	"fmt"
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// Occurrence is one concrete instance of an event. It is derived on every
// query and never stored.
type Occurrence struct {
	ID          string        `json:"id"`
	EventID     string        `json:"eventId"`
	Date        timeutil.Date `json:"date"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	Event       *Event        `json:"-"`
	IsException bool          `json:"isException"`
	ExceptionID *string       `json:"exceptionId"`
}

func OccurrenceID(eventID string, date timeutil.Date) string {
	return fmt.Sprintf("%s_%s", eventID, date.String())
}

func (occurrence Occurrence) Title() string {
	if occurrence.Event == nil {
		return ""
	}
	return occurrence.Event.Title
}

func (occurrence Occurrence) Interval() Interval {
	return Interval{Start: occurrence.Start, End: occurrence.End}
}

// In returns a copy with its instants presented in loc.
func (occurrence Occurrence) In(loc *time.Location) Occurrence {
	occurrence.Start = occurrence.Start.In(loc)
	occurrence.End = occurrence.End.In(loc)
	return occurrence
}

// Interval is a range of absolute instants.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports a non-empty intersection. Intervals that only touch do
// not overlap.
func (interval Interval) Overlaps(other Interval) bool {
	return interval.Start.Before(other.End) && other.Start.Before(interval.End)
}

// Contains reports whether t lies in the closed interval.
func (interval Interval) Contains(t time.Time) bool {
	return !t.Before(interval.Start) && !t.After(interval.End)
}

// Pad widens the interval by before and after.
func (interval Interval) Pad(before, after time.Duration) Interval {
	return Interval{
		Start: interval.Start.Add(-before),
		End:   interval.End.Add(after),
	}
}

func (interval Interval) Validate() error {
	if !interval.End.After(interval.Start) {
		return ErrInvalidTimeRange
	}
	return nil
}
