// Package icsfeed converts between occurrences and iCalendar documents.
package icsfeed

import (
	"time"

	ics "github.com/arran4/golang-ical"
	"planner.xdoubleu.com/apps/calendar/internal/models"
)

const (
	productID   = "-//xdoubleu//planner//EN"
	uidDomain   = "@planner.xdoubleu.com"
	ContentType = "text/calendar; charset=utf-8"
)

var propertyColor = ics.ComponentProperty("COLOR")

// Encode renders occurrences as a published calendar. Every occurrence
// becomes its own VEVENT so that exceptions need no RECURRENCE-ID handling
// on the subscriber side.
func Encode(
	name string,
	occurrences []models.Occurrence,
	stamp time.Time,
) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(name)

	for _, occurrence := range occurrences {
		event := cal.AddEvent(occurrence.ID + uidDomain)
		event.SetDtStampTime(stamp)
		event.SetStartAt(occurrence.Start)
		event.SetEndAt(occurrence.End)
		event.SetSummary(occurrence.Title())

		if occurrence.Event == nil {
			continue
		}

		if occurrence.Event.Description != nil {
			event.SetDescription(*occurrence.Event.Description)
		}

		if occurrence.Event.Color != "" {
			event.SetProperty(propertyColor, occurrence.Event.Color)
		}
	}

	return cal.Serialize()
}
