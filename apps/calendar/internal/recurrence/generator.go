package recurrence

import (
	"cmp"
	"iter"
	"slices"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// DefaultPaddingDays bounds how far outside the query window natural
// occurrence days are scanned. Rescheduled occurrences whose natural day lies
// further away than the padding are not found.
const DefaultPaddingDays = 365

type Generator struct {
	PaddingDays int
}

func NewGenerator(paddingDays int) Generator {
	if paddingDays <= 0 {
		paddingDays = DefaultPaddingDays
	}
	return Generator{PaddingDays: paddingDays}
}

func (generator Generator) padding() int {
	if generator.PaddingDays <= 0 {
		return DefaultPaddingDays
	}
	return generator.PaddingDays
}

// ScanRange returns the natural occurrence days inspected for window,
// expressed in the authoring zone of event.
func (generator Generator) ScanRange(
	event models.Event,
	window models.Interval,
) timeutil.DateRange {
	return generator.scanRange(compile(&event), window)
}

func (generator Generator) scanRange(
	rule compiled,
	window models.Interval,
) timeutil.DateRange {
	pad := generator.padding()

	from := timeutil.DateOf(window.Start, rule.loc).AddDays(-pad)
	if from.Before(rule.first) {
		from = rule.first
	}

	return timeutil.DateRange{
		From: from,
		To:   timeutil.DateOf(window.End, rule.loc).AddDays(pad),
	}
}

// Expand yields the occurrences of event whose final start lies in the closed
// window. Natural days are walked in order, so the sequence is not sorted by
// start once rescheduled occurrences are involved; use Collect for that.
func (generator Generator) Expand(
	event *models.Event,
	exceptions []models.Exception,
	window models.Interval,
) iter.Seq[models.Occurrence] {
	return func(yield func(models.Occurrence) bool) {
		if window.End.Before(window.Start) {
			return
		}

		index := IndexExceptions(exceptions)
		rule := compile(event)

		switch pattern := event.Recurrence().(type) {
		case models.OneTime:
			occurrence, ok := index.Apply(rule.occurrence(rule.first))
			if ok && window.Contains(occurrence.Start) {
				yield(occurrence)
			}
			return
		case models.Weekly:
			if pattern.Days().IsEmpty() {
				return
			}
		}

		for day := range generator.scanRange(rule, window).All() {
			if !rule.matches(day) {
				continue
			}

			occurrence, ok := index.Apply(rule.occurrence(day))
			if !ok || !window.Contains(occurrence.Start) {
				continue
			}

			if !yield(occurrence) {
				return
			}
		}
	}
}

// Occurrences expands a single event and sorts the result by start.
func (generator Generator) Occurrences(
	event *models.Event,
	exceptions []models.Exception,
	window models.Interval,
) []models.Occurrence {
	return Collect(generator.Expand(event, exceptions, window))
}

// ExpandAll expands every event and merges the results ordered by start.
func (generator Generator) ExpandAll(
	events []models.EventWithExceptions,
	window models.Interval,
) []models.Occurrence {
	result := []models.Occurrence{}
	for i := range events {
		result = slices.AppendSeq(
			result,
			generator.Expand(&events[i].Event, events[i].Exceptions, window),
		)
	}

	SortOccurrences(result)
	return result
}

func Collect(seq iter.Seq[models.Occurrence]) []models.Occurrence {
	result := slices.Collect(seq)
	if result == nil {
		result = []models.Occurrence{}
	}

	SortOccurrences(result)
	return result
}

// SortOccurrences orders by start, then event and natural day so that the
// order is stable across calls.
func SortOccurrences(occurrences []models.Occurrence) {
	slices.SortStableFunc(occurrences, func(a, b models.Occurrence) int {
		return cmp.Or(
			a.Start.Compare(b.Start),
			cmp.Compare(a.EventID, b.EventID),
			a.Date.Compare(b.Date),
		)
	})
}
