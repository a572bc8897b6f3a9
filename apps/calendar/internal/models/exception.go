package models

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// Exception overrides the occurrence of an event on one calendar day, either
// cancelling it or moving it to new times.
type Exception struct {
	ID        string        `json:"id"`
	EventID   string        `json:"eventId"`
	Date      timeutil.Date `json:"exceptionDate"`
	IsDeleted bool          `json:"isDeleted"`
	NewStart  *time.Time    `json:"newStartTime"`
	NewEnd    *time.Time    `json:"newEndTime"`
	CreatedAt time.Time     `json:"createdAt"`
}

func (exception Exception) IsReschedule() bool {
	return !exception.IsDeleted
}

func (exception Exception) Validate() error {
	if exception.IsDeleted {
		if exception.NewStart != nil || exception.NewEnd != nil {
			return ErrInvalidException
		}
		return nil
	}

	if exception.NewStart == nil || exception.NewEnd == nil {
		return ErrInvalidException
	}

	if !exception.NewEnd.After(*exception.NewStart) {
		return ErrInvalidTimeRange
	}

	return nil
}
