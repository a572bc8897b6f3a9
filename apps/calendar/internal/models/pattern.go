package models

import (
	"fmt"
	"slices"
	"time"
)

type PatternKind string

const (
	PatternNone   PatternKind = "none"
	PatternDaily  PatternKind = "daily"
	PatternWeekly PatternKind = "weekly"
)

// RecurrencePattern is one of OneTime, Daily or Weekly.
type RecurrencePattern interface {
	Kind() PatternKind
	pattern()
}

type OneTime struct{}

type Daily struct{}

// Weekly repeats on a fixed set of weekdays. Build it with NewWeekly; the
// zero value has no weekdays and never produces an occurrence.
type Weekly struct {
	days WeekdaySet
}

func (OneTime) Kind() PatternKind { return PatternNone }
func (Daily) Kind() PatternKind   { return PatternDaily }
func (Weekly) Kind() PatternKind  { return PatternWeekly }

func (OneTime) pattern() {}
func (Daily) pattern()   {}
func (Weekly) pattern()  {}

func NewWeekly(days ...time.Weekday) (Weekly, error) {
	set, err := NewWeekdaySet(days...)
	if err != nil {
		return Weekly{}, err
	}

	if set.IsEmpty() {
		return Weekly{}, ErrInvalidRecurrenceRule
	}

	return Weekly{days: set}, nil
}

func (w Weekly) Days() WeekdaySet {
	return w.days
}

// ParsePattern builds a pattern from its stored or submitted form.
// Weekday indices are ignored unless the kind is weekly.
func ParsePattern(kind string, days []int) (RecurrencePattern, error) {
	switch PatternKind(kind) {
	case PatternNone, "":
		return OneTime{}, nil
	case PatternDaily:
		return Daily{}, nil
	case PatternWeekly:
		weekdays := make([]time.Weekday, 0, len(days))
		for _, day := range days {
			weekdays = append(weekdays, time.Weekday(day))
		}
		return NewWeekly(weekdays...)
	default:
		return nil, fmt.Errorf("%w: unknown pattern %q", ErrInvalidRecurrenceRule, kind)
	}
}

// WeekdayIndices returns the weekday set of p as sorted indices (Sunday=0),
// empty for patterns without weekdays.
func WeekdayIndices(p RecurrencePattern) []int {
	weekly, ok := p.(Weekly)
	if !ok {
		return []int{}
	}

	indices := []int{}
	for _, day := range weekly.days.Weekdays() {
		indices = append(indices, int(day))
	}
	return indices
}

// WeekdaySet is a bit set of weekdays, bit 0 being Sunday.
type WeekdaySet uint8

func NewWeekdaySet(days ...time.Weekday) (WeekdaySet, error) {
	var set WeekdaySet

	for _, day := range days {
		if day < time.Sunday || day > time.Saturday {
			return 0, fmt.Errorf("%w: weekday %d", ErrInvalidRecurrenceRule, day)
		}
		set |= 1 << uint(day)
	}

	return set, nil
}

func (set WeekdaySet) Has(day time.Weekday) bool {
	if day < time.Sunday || day > time.Saturday {
		return false
	}
	return set&(1<<uint(day)) != 0
}

func (set WeekdaySet) IsEmpty() bool {
	return set == 0
}

func (set WeekdaySet) Weekdays() []time.Weekday {
	days := []time.Weekday{}
	for day := time.Sunday; day <= time.Saturday; day++ {
		if set.Has(day) {
			days = append(days, day)
		}
	}
	return days
}

func (set WeekdaySet) String() string {
	names := []string{}
	for _, day := range set.Weekdays() {
		//nolint:mnd //abbreviation length
		names = append(names, day.String()[:3])
	}
	return fmt.Sprint(names)
}

// EqualPatterns compares two patterns including their weekday sets.
func EqualPatterns(a, b RecurrencePattern) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return slices.Equal(WeekdayIndices(a), WeekdayIndices(b))
}
