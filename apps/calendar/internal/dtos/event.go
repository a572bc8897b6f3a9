package dtos

import (
	"time"

	"github.com/xdoubleu/essentia/v2/pkg/validate"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

var recurrencePatterns = []string{
	"",
	string(models.PatternNone),
	string(models.PatternDaily),
	string(models.PatternWeekly),
}

// CreateEventDto carries instants either as RFC 3339 or as wall-clock
// times in Timezone.
type CreateEventDto struct {
	Title             string  `json:"title"             schema:"title"`
	Description       *string `json:"description"       schema:"description"`
	Start             string  `json:"start"             schema:"start"`
	End               string  `json:"end"               schema:"end"`
	Timezone          string  `json:"timezone"          schema:"timezone"`
	RecurrencePattern string  `json:"recurrencePattern" schema:"recurrencePattern"`
	RecurrenceDays    []int   `json:"recurrenceDays"    schema:"recurrenceDays"`
	Color             string  `json:"color"             schema:"color"`
}

func (dto *CreateEventDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "title", dto.Title, validate.IsNotEmpty)
	validate.Check(v, "start", dto.Start, validate.IsNotEmpty)
	validate.Check(v, "end", dto.End, validate.IsNotEmpty)
	validate.Check(
		v,
		"recurrencePattern",
		dto.RecurrencePattern,
		validate.IsInSlice(recurrencePatterns),
	)

	return v.Valid(), v.Errors()
}

// UpdateEventDto only changes the fields that are set. RecurrenceDays
// replaces the weekday set when present.
type UpdateEventDto struct {
	Title             *string `json:"title"`
	Description       *string `json:"description"`
	Start             *string `json:"start"`
	End               *string `json:"end"`
	Timezone          *string `json:"timezone"`
	RecurrencePattern *string `json:"recurrencePattern"`
	RecurrenceDays    []int   `json:"recurrenceDays"`
	Color             *string `json:"color"`
}

func (dto *UpdateEventDto) Validate() (bool, map[string]string) {
	v := validate.New()

	if dto.Title != nil {
		validate.Check(v, "title", *dto.Title, validate.IsNotEmpty)
	}

	if dto.Start != nil {
		validate.Check(v, "start", *dto.Start, validate.IsNotEmpty)
	}

	if dto.End != nil {
		validate.Check(v, "end", *dto.End, validate.IsNotEmpty)
	}

	if dto.RecurrencePattern != nil {
		validate.Check(
			v,
			"recurrencePattern",
			*dto.RecurrencePattern,
			validate.IsInSlice(recurrencePatterns),
		)
	}

	return v.Valid(), v.Errors()
}

type EventDto struct {
	ID                string    `json:"id"`
	OwnerID           *string   `json:"ownerId"`
	Title             string    `json:"title"`
	Description       *string   `json:"description"`
	Start             time.Time `json:"start"`
	End               time.Time `json:"end"`
	Timezone          string    `json:"timezone"`
	RecurrencePattern string    `json:"recurrencePattern"`
	RecurrenceDays    []int     `json:"recurrenceDays"`
	Color             string    `json:"color"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func NewEventDto(event models.Event) EventDto {
	return EventDto{
		ID:                event.ID,
		OwnerID:           event.OwnerID,
		Title:             event.Title,
		Description:       event.Description,
		Start:             event.Start,
		End:               event.End,
		Timezone:          event.Timezone,
		RecurrencePattern: string(event.Recurrence().Kind()),
		RecurrenceDays:    models.WeekdayIndices(event.Recurrence()),
		Color:             event.Color,
		CreatedAt:         event.CreatedAt,
		UpdatedAt:         event.UpdatedAt,
	}
}

func NewEventDtos(events []models.Event) []EventDto {
	result := make([]EventDto, 0, len(events))
	for _, event := range events {
		result = append(result, NewEventDto(event))
	}
	return result
}

type ImportURLDto struct {
	URL string `json:"url" schema:"url"`
}

func (dto *ImportURLDto) Validate() (bool, map[string]string) {
	v := validate.New()

	validate.Check(v, "url", dto.URL, validate.IsNotEmpty)

	return v.Valid(), v.Errors()
}

type ImportResultDto struct {
	Created []EventDto                `json:"created"`
	Skipped []models.SkippedComponent `json:"skipped"`
}

func NewImportResultDto(result models.ImportResult) ImportResultDto {
	return ImportResultDto{
		Created: NewEventDtos(result.Created),
		Skipped: result.Skipped,
	}
}
