package timeutil

import (
	"fmt"
	"iter"
	"time"
)

const DateFormat = "2006-01-02"

// Date is a calendar day, detached from any time of day or zone.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day on which instant t falls in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	return DateFromTime(t.In(loc))
}

// DateFromTime reads the calendar fields of t in its own location.
func DateFromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(value string) (Date, error) {
	t, err := time.Parse(DateFormat, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return DateFromTime(t), nil
}

// SameDay reports whether a and b fall on the same calendar day in loc.
// Exception lookup and rule evaluation both go through this comparison.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DateOf(a, loc) == DateOf(b, loc)
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Weekday() time.Weekday {
	return d.noon().Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateFromTime(time.Date(d.Year, d.Month, d.Day+n, 12, 0, 0, 0, time.UTC))
}

func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) After(other Date) bool {
	return d.Compare(other) > 0
}

// DaysUntil returns the number of calendar days from d to other.
func (d Date) DaysUntil(other Date) int {
	//nolint:mnd //hours in a day
	return int(other.noon().Sub(d.noon()).Hours() / 24)
}

// At attaches a wall-clock time of day to d in loc and converts the result
// to an absolute instant. Gaps and folds around DST transitions resolve the
// way time.Date resolves them.
func (d Date) At(clock Clock, loc *time.Location) time.Time {
	return time.Date(
		d.Year, d.Month, d.Day,
		clock.Hour, clock.Minute, clock.Second, clock.Nanosecond,
		loc,
	)
}

// StartIn returns midnight of d in loc.
func (d Date) StartIn(loc *time.Location) time.Time {
	return d.At(Clock{}, loc)
}

// Time returns midnight UTC of d, the representation used for DATE columns.
func (d Date) Time() time.Time {
	return d.StartIn(time.UTC)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(text []byte) error {
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) noon() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// Clock is a wall-clock time of day.
type Clock struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

func ClockOf(t time.Time, loc *time.Location) Clock {
	local := t.In(loc)
	return Clock{
		Hour:       local.Hour(),
		Minute:     local.Minute(),
		Second:     local.Second(),
		Nanosecond: local.Nanosecond(),
	}
}

// DateRange is a closed range of calendar days.
type DateRange struct {
	From Date
	To   Date
}

// Len returns the number of days in the range, zero when To precedes From.
func (r DateRange) Len() int {
	if r.To.Before(r.From) {
		return 0
	}
	return r.From.DaysUntil(r.To) + 1
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.From) && !d.After(r.To)
}

// All yields every day of the range in ascending order.
func (r DateRange) All() iter.Seq[Date] {
	return func(yield func(Date) bool) {
		n := r.Len()
		for i := 0; i < n; i++ {
			if !yield(r.From.AddDays(i)) {
				return
			}
		}
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
