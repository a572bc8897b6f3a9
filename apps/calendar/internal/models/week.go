package models

import (
	"time"

	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

// Week groups occurrences per calendar day of the viewer.
type Week struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Timezone string    `json:"timezone"`
	Days     []Day     `json:"days"`
}

type Day struct {
	Date        timeutil.Date `json:"date"`
	Occurrences []Occurrence  `json:"occurrences"`
}

// IsToday reports whether the day is today for a viewer in loc.
func (day Day) IsToday(now time.Time, loc *time.Location) bool {
	return timeutil.DateOf(now, loc) == day.Date
}
