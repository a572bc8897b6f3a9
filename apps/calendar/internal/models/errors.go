package models

import (
	"errors"
	"fmt"
	"time"
)

//nolint:lll //messages
var (
	ErrInvalidTimeRange           = errors.New("end must be strictly after start")
	ErrInvalidRecurrenceRule      = errors.New("weekly recurrence requires at least one weekday between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidOccurrenceReference = errors.New("date does not correspond to an occurrence of the event")
	ErrInvalidException           = errors.New("rescheduled exceptions need both new times, deletions none")
	ErrConflict                   = errors.New("time range overlaps an existing occurrence")
)

// ConflictError reports the first occurrence found overlapping a candidate range.
type ConflictError struct {
	Occurrence Occurrence
}

func (err *ConflictError) Error() string {
	return fmt.Sprintf(
		"%s: %q from %s to %s",
		ErrConflict.Error(),
		err.Occurrence.Title(),
		err.Occurrence.Start.Format(time.RFC3339),
		err.Occurrence.End.Format(time.RFC3339),
	)
}

func (err *ConflictError) Unwrap() error {
	return ErrConflict
}
