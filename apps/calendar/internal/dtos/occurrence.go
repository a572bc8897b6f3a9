package dtos

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type OccurrenceDto struct {
	ID          string        `json:"id"`
	EventID     string        `json:"eventId"`
	Title       string        `json:"title"`
	Color       string        `json:"color"`
	Date        timeutil.Date `json:"date"`
	Start       time.Time     `json:"start"`
	End         time.Time     `json:"end"`
	IsException bool          `json:"isException"`
	ExceptionID *string       `json:"exceptionId"`
}

func NewOccurrenceDto(occurrence models.Occurrence) OccurrenceDto {
	color := ""
	if occurrence.Event != nil {
		color = occurrence.Event.Color
	}

	return OccurrenceDto{
		ID:          occurrence.ID,
		EventID:     occurrence.EventID,
		Title:       occurrence.Title(),
		Color:       color,
		Date:        occurrence.Date,
		Start:       occurrence.Start,
		End:         occurrence.End,
		IsException: occurrence.IsException,
		ExceptionID: occurrence.ExceptionID,
	}
}

func NewOccurrenceDtos(occurrences []models.Occurrence) []OccurrenceDto {
	result := make([]OccurrenceDto, 0, len(occurrences))
	for _, occurrence := range occurrences {
		result = append(result, NewOccurrenceDto(occurrence))
	}
	return result
}
