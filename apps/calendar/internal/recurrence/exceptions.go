package recurrence

import (
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// ExceptionIndex maps calendar days to the exception recorded for them.
type ExceptionIndex struct {
	byDate map[timeutil.Date]models.Exception
	// Duplicates holds exceptions that lost to an earlier one for the same
	// day. Storage enforces one exception per day, so a non-empty slice
	// points at an integrity problem.
	Duplicates []models.Exception
}

func IndexExceptions(exceptions []models.Exception) ExceptionIndex {
	index := ExceptionIndex{
		byDate:     make(map[timeutil.Date]models.Exception, len(exceptions)),
		Duplicates: nil,
	}

	for _, exception := range exceptions {
		if _, ok := index.byDate[exception.Date]; ok {
			index.Duplicates = append(index.Duplicates, exception)
			continue
		}
		index.byDate[exception.Date] = exception
	}

	return index
}

func (index ExceptionIndex) Lookup(date timeutil.Date) (models.Exception, bool) {
	exception, ok := index.byDate[date]
	return exception, ok
}

func (index ExceptionIndex) Len() int {
	return len(index.byDate)
}

// Apply folds the exception recorded for the natural day of occurrence into
// it. The boolean is false when the occurrence was cancelled.
func (index ExceptionIndex) Apply(occurrence models.Occurrence) (models.Occurrence, bool) {
	exception, ok := index.Lookup(occurrence.Date)
	if !ok {
		return occurrence, true
	}

	return applyException(occurrence, exception)
}

// Apply looks for the first exception on the natural day of occurrence and
// folds it in. The boolean is false when the occurrence was cancelled.
func Apply(
	occurrence models.Occurrence,
	exceptions []models.Exception,
) (models.Occurrence, bool) {
	for _, exception := range exceptions {
		if exception.Date == occurrence.Date {
			return applyException(occurrence, exception)
		}
	}

	return occurrence, true
}

func applyException(
	occurrence models.Occurrence,
	exception models.Exception,
) (models.Occurrence, bool) {
	if exception.IsDeleted {
		return models.Occurrence{}, false
	}

	if exception.NewStart == nil || exception.NewEnd == nil {
		return occurrence, true
	}

	id := exception.ID
	occurrence.Start = *exception.NewStart
	occurrence.End = *exception.NewEnd
	occurrence.IsException = true
	occurrence.ExceptionID = &id

	return occurrence, true
}
