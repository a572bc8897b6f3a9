package dtos

import (
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/validate"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// ApplyExceptionDto overrides the occurrence on ExceptionDate, a calendar
// day (YYYY-MM-DD) or an instant on that day in the zone of the event.
type ApplyExceptionDto struct {
	ExceptionDate string  `json:"exceptionDate"`
	IsDeleted     bool    `json:"isDeleted"`
	NewStart      *string `json:"newStartTime"`
	NewEnd        *string `json:"newEndTime"`
}

func (dto *ApplyExceptionDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "exceptionDate", dto.ExceptionDate, validate.IsNotEmpty)

	if dto.NewStart != nil {
		validate.Check(v, "newStartTime", *dto.NewStart, validate.IsNotEmpty)
	}

	if dto.NewEnd != nil {
		validate.Check(v, "newEndTime", *dto.NewEnd, validate.IsNotEmpty)
	}

	return v.Valid(), v.Errors()
}

type ConflictCheckDto struct {
	Start          string  `json:"start"`
	End            string  `json:"end"`
	Timezone       string  `json:"timezone"`
	ExcludeEventID *string `json:"excludeEventId"`
}

func (dto *ConflictCheckDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "start", dto.Start, validate.IsNotEmpty)
	validate.Check(v, "end", dto.End, validate.IsNotEmpty)

	return v.Valid(), v.Errors()
}

type ConflictResultDto struct {
	HasConflict bool           `json:"hasConflict"`
	Conflict    *OccurrenceDto `json:"conflict"`
}

func NewConflictResultDto(occurrence *models.Occurrence) ConflictResultDto {
	if occurrence == nil {
		return ConflictResultDto{HasConflict: false, Conflict: nil}
	}

	conflict := NewOccurrenceDto(*occurrence)
	return ConflictResultDto{HasConflict: true, Conflict: &conflict}
}

type ExceptionDto struct {
	ID            string        `json:"id"`
	EventID       string        `json:"eventId"`
	ExceptionDate timeutil.Date `json:"exceptionDate"`
	IsDeleted     bool          `json:"isDeleted"`
	NewStart      *time.Time    `json:"newStartTime"`
	NewEnd        *time.Time    `json:"newEndTime"`
}

func NewExceptionDto(exception models.Exception) ExceptionDto {
	return ExceptionDto{
		ID:            exception.ID,
		EventID:       exception.EventID,
		ExceptionDate: exception.Date,
		IsDeleted:     exception.IsDeleted,
		NewStart:      exception.NewStart,
		NewEnd:        exception.NewEnd,
	}
}

func NewExceptionDtos(exceptions []models.Exception) []ExceptionDto {
	result := make([]ExceptionDto, 0, len(exceptions))
	for _, exception := range exceptions {
		result = append(result, NewExceptionDto(exception))
	}
	return result
}

// ErrorDto is the body of a rejected request. Conflict is set when the
// request overlapped an existing occurrence.
type ErrorDto struct {
	Message  string         `json:"message"`
	Conflict *OccurrenceDto `json:"conflict,omitempty"`
}
