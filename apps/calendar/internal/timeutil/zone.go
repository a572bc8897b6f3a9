package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var ErrUnknownZone = errors.New("unknown timezone")

//nolint:gochecknoglobals //compiled once
var offsetPattern = regexp.MustCompile(`^(?:UTC|GMT)?([+-])(\d{1,2})(?::?(\d{2}))?$`)

// zones caches resolved locations by name, time.LoadLocation reads the
// zone database on every call.
//
//nolint:gochecknoglobals //shared cache
var zones sync.Map

// LoadZone resolves an IANA zone name or a fixed UTC offset such as
// "+02:00", "-0530" or "UTC+2".
func LoadZone(name string) (*time.Location, error) {
	if loc, ok := zones.Load(name); ok {
		return loc.(*time.Location), nil //nolint:errcheck,forcetypeassert //only locations are stored
	}

	loc, err := loadZone(name)
	if err != nil {
		return nil, err
	}

	zones.Store(name, loc)
	return loc, nil
}

func loadZone(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)

	switch strings.ToUpper(name) {
	case "":
		return nil, fmt.Errorf("%w: empty name", ErrUnknownZone)
	case "UTC", "Z", "GMT":
		return time.UTC, nil
	}

	if m := offsetPattern.FindStringSubmatch(strings.ToUpper(name)); m != nil {
		return fixedZone(name, m)
	}

	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}

	return loc, nil
}

func fixedZone(name string, m []string) (*time.Location, error) {
	hours, _ := strconv.Atoi(m[2])
	minutes := 0
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}

	//nolint:mnd //offsets beyond ±14:59 do not exist
	if hours > 14 || minutes > 59 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownZone, name)
	}

	offset := hours*3600 + minutes*60 //nolint:mnd //seconds
	if m[1] == "-" {
		offset = -offset
	}

	return time.FixedZone(name, offset), nil
}

// ParseWeekday accepts english weekday names or their three letter prefix.
func ParseWeekday(value string) (time.Weekday, error) {
	value = strings.ToLower(strings.TrimSpace(value))

	//nolint:mnd //length of a weekday abbreviation
	if len(value) < 3 {
		return 0, fmt.Errorf("invalid weekday %q", value)
	}

	for day := time.Sunday; day <= time.Saturday; day++ {
		if strings.HasPrefix(strings.ToLower(day.String()), value) {
			return day, nil
		}
	}

	return 0, fmt.Errorf("invalid weekday %q", value)
}

// WeekBounds returns the closed window covering the week that contains t
// in loc. The week starts at midnight of the most recent weekStart and ends
// one nanosecond before the following week's midnight.
func WeekBounds(
	t time.Time,
	loc *time.Location,
	weekStart time.Weekday,
) (time.Time, time.Time) {
	day := DateOf(t, loc)

	//nolint:mnd //days in a week
	back := (int(day.Weekday()) - int(weekStart) + 7) % 7
	first := day.AddDays(-back)

	start := first.StartIn(loc)
	//nolint:mnd //days in a week
	end := first.AddDays(7).StartIn(loc).Add(-time.Nanosecond)

	return start, end
}

// ParseInstant reads RFC 3339 timestamps as absolute instants. Values without
// an offset ("2006-01-02T15:04", "2006-01-02") are read as wall clock in loc.
func ParseInstant(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}

	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", DateFormat} {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}
