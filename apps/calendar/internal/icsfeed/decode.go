package icsfeed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"planner.xdoubleu.com/apps/calendar/internal/models"
	"planner.xdoubleu.com/apps/calendar/internal/timeutil"
)

const (
	layoutUTC      = "20060102T150405Z"
	layoutFloating = "20060102T150405"
	layoutDate     = "20060102"
)

var (
	ErrMissingStart        = errors.New("missing DTSTART")
	ErrMissingEnd          = errors.New("missing DTEND")
	ErrUnsupportedRule     = errors.New("unsupported recurrence rule")
	ErrUnsupportedOverride = errors.New("recurrence overrides are not supported")
	ErrCancelled           = errors.New("event is cancelled")
	ErrMalformed           = errors.New("malformed iCalendar document")
)

// Imported is a VEVENT translated to the fields of an event.
type Imported struct {
	UID         string
	Summary     string
	Description *string
	Start       time.Time
	End         time.Time
	Timezone    string
	Pattern     models.RecurrencePattern
	// Cancelled holds the EXDATE instants of a recurring VEVENT.
	Cancelled []time.Time
}

// Decode reads every VEVENT of an iCalendar document. Floating times are
// read in defaultZone. Components that cannot be represented are reported
// as skipped instead of failing the whole document.
func Decode(
	r io.Reader,
	defaultZone string,
) ([]Imported, []models.SkippedComponent, error) {
	fallback, err := timeutil.LoadZone(defaultZone)
	if err != nil {
		return nil, nil, err
	}

	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	imported := []Imported{}
	skipped := []models.SkippedComponent{}

	for _, vevent := range cal.Events() {
		event, decodeErr := decodeEvent(vevent, defaultZone, fallback)
		if decodeErr != nil {
			skipped = append(skipped, models.SkippedComponent{
				UID:     propertyValue(vevent, ics.ComponentPropertyUniqueId),
				Summary: propertyValue(vevent, ics.ComponentPropertySummary),
				Reason:  decodeErr.Error(),
			})
			continue
		}

		imported = append(imported, *event)
	}

	return imported, skipped, nil
}

func decodeEvent(
	vevent *ics.VEvent,
	defaultZone string,
	fallback *time.Location,
) (*Imported, error) {
	if vevent.GetProperty(ics.ComponentProperty("RECURRENCE-ID")) != nil {
		return nil, ErrUnsupportedOverride
	}

	if strings.EqualFold(propertyValue(vevent, ics.ComponentPropertyStatus), "CANCELLED") {
		return nil, ErrCancelled
	}

	startProp := vevent.GetProperty(ics.ComponentPropertyDtStart)
	if startProp == nil {
		return nil, ErrMissingStart
	}

	start, zone, allDay, err := parseDateTime(
		startProp.Value,
		startProp.ICalParameters,
		defaultZone,
		fallback,
	)
	if err != nil {
		return nil, err
	}

	var end time.Time
	if endProp := vevent.GetProperty(ics.ComponentPropertyDtEnd); endProp != nil {
		end, _, _, err = parseDateTime(
			endProp.Value,
			endProp.ICalParameters,
			defaultZone,
			fallback,
		)
		if err != nil {
			return nil, err
		}
	} else if allDay {
		loc, _ := timeutil.LoadZone(zone)
		end = timeutil.DateOf(start, loc).AddDays(1).StartIn(loc)
	} else {
		return nil, ErrMissingEnd
	}

	if !end.After(start) {
		return nil, models.ErrInvalidTimeRange
	}

	//nolint:exhaustruct //optional fields are assigned below
	event := Imported{
		UID:      propertyValue(vevent, ics.ComponentPropertyUniqueId),
		Summary:  propertyValue(vevent, ics.ComponentPropertySummary),
		Start:    start,
		End:      end,
		Timezone: zone,
		Pattern:  models.OneTime{},
	}

	description := plainText(propertyValue(vevent, ics.ComponentPropertyDescription))
	if description != "" {
		event.Description = &description
	}

	if ruleProp := vevent.GetProperty(ics.ComponentPropertyRrule); ruleProp != nil {
		loc, _ := timeutil.LoadZone(zone)
		event.Pattern, err = patternFromRule(ruleProp.Value, start.In(loc).Weekday())
		if err != nil {
			return nil, err
		}

		event.Cancelled, err = exceptionDates(vevent, defaultZone, fallback)
		if err != nil {
			return nil, err
		}
	}

	return &event, nil
}

// patternFromRule maps the RRULE subset that a Daily or Weekly pattern can
// express: FREQ=DAILY or FREQ=WEEKLY with BYDAY, interval 1 and no end.
func patternFromRule(
	value string,
	startWeekday time.Weekday,
) (models.RecurrencePattern, error) {
	option, err := rrule.StrToROption(strings.TrimPrefix(value, "RRULE:"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedRule, err)
	}

	if option.Interval > 1 {
		return nil, fmt.Errorf("%w: INTERVAL=%d", ErrUnsupportedRule, option.Interval)
	}

	if option.Count > 0 || !option.Until.IsZero() {
		return nil, fmt.Errorf("%w: bounded rules", ErrUnsupportedRule)
	}

	if len(option.Bysetpos)+len(option.Bymonth)+len(option.Bymonthday)+
		len(option.Byyearday)+len(option.Byweekno)+len(option.Byhour)+
		len(option.Byminute)+len(option.Bysecond)+len(option.Byeaster) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedRule, value)
	}

	switch option.Freq {
	case rrule.DAILY:
		if len(option.Byweekday) > 0 {
			return nil, fmt.Errorf("%w: BYDAY on a daily rule", ErrUnsupportedRule)
		}
		return models.Daily{}, nil
	case rrule.WEEKLY:
		days := []time.Weekday{}
		for _, weekday := range option.Byweekday {
			if weekday.N() != 0 {
				return nil, fmt.Errorf("%w: %v", ErrUnsupportedRule, weekday)
			}
			days = append(days, weekdayFromRule(weekday))
		}

		if len(days) == 0 {
			days = append(days, startWeekday)
		}

		return models.NewWeekly(days...)
	default:
		return nil, fmt.Errorf("%w: FREQ=%v", ErrUnsupportedRule, option.Freq)
	}
}

// weekdayFromRule converts rrule's Monday-first numbering.
func weekdayFromRule(weekday rrule.Weekday) time.Weekday {
	//nolint:mnd //days in a week
	return time.Weekday((weekday.Day() + 1) % 7)
}

func exceptionDates(
	vevent *ics.VEvent,
	defaultZone string,
	fallback *time.Location,
) ([]time.Time, error) {
	result := []time.Time{}

	for _, prop := range vevent.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}

			t, _, _, err := parseDateTime(
				part,
				prop.ICalParameters,
				defaultZone,
				fallback,
			)
			if err != nil {
				return nil, err
			}
			result = append(result, t)
		}
	}

	return result, nil
}

// parseDateTime reads a DATE or DATE-TIME value and reports the zone the
// value was authored in.
func parseDateTime(
	value string,
	params map[string][]string,
	defaultZone string,
	fallback *time.Location,
) (time.Time, string, bool, error) {
	value = strings.TrimSpace(value)
	zone := defaultZone
	loc := fallback

	tzid, hasZone := params["TZID"]
	if hasZone && len(tzid) > 0 {
		tzLoc, err := timeutil.LoadZone(tzid[0])
		if err != nil {
			return time.Time{}, "", false, err
		}
		zone = tzid[0]
		loc = tzLoc
	}

	switch {
	case strings.HasSuffix(value, "Z"):
		t, err := time.Parse(layoutUTC, value)
		if !hasZone {
			zone = "UTC"
		}
		return t, zone, false, err
	case strings.Contains(value, "T"):
		t, err := time.ParseInLocation(layoutFloating, value, loc)
		return t, zone, false, err
	default:
		t, err := time.ParseInLocation(layoutDate, value, loc)
		return t, zone, true, err
	}
}

func propertyValue(vevent *ics.VEvent, property ics.ComponentProperty) string {
	prop := vevent.GetProperty(property)
	if prop == nil {
		return ""
	}
	return prop.Value
}
