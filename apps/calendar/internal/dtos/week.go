package dtos

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

type WeekDto struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone"`
	Days     []DayDto  `json:"days"`
}

type DayDto struct {
	Date        timeutil.Date   `json:"date"`
	Occurrences []OccurrenceDto `json:"occurrences"`
}

func NewWeekDto(week models.Week) WeekDto {
	days := make([]DayDto, 0, len(week.Days))
	for _, day := range week.Days {
		days = append(days, DayDto{
			Date:        day.Date,
			Occurrences: NewOccurrenceDtos(day.Occurrences),
		})
	}

	return WeekDto{
		Start:    week.Start,
		End:      week.End,
		Timezone: week.Timezone,
		Days:     days,
	}
}
