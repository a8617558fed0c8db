// Package workday converts between scan instants and the calendar days
// attendance and reports are keyed on.
package workday

import (
	"time"

	errors "github.com/frahmantamala/workforce-presence/internal"
)

const (
	DateLayout  = "2006-01-02"
	MonthLayout = "2006-01"
)

var (
	ErrInvalidDate  = errors.NewBadRequestError("date must be in YYYY-MM-DD format", errors.ErrCodeInvalidDate)
	ErrInvalidMonth = errors.NewBadRequestError("month must be in YYYY-MM format", errors.ErrCodeInvalidMonth)
)

// Format returns the calendar day of t in loc.
func Format(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// Range is an inclusive [Start, End] interval expressed in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Day parses a YYYY-MM-DD string and returns 00:00:00.000 to 23:59:59.999 of that day in loc.
func Day(day string, loc *time.Location) (Range, error) {
	start, err := time.ParseInLocation(DateLayout, day, loc)
	if err != nil {
		return Range{}, ErrInvalidDate.WithCause(err)
	}
	end := start.AddDate(0, 0, 1).Add(-time.Millisecond)
	return Range{Start: start.UTC(), End: end.UTC()}, nil
}

// Month parses a YYYY-MM string and returns the first to the last millisecond of that month in loc.
func Month(month string, loc *time.Location) (Range, error) {
	start, err := time.ParseInLocation(MonthLayout, month, loc)
	if err != nil {
		return Range{}, ErrInvalidMonth.WithCause(err)
	}
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Range{Start: start.UTC(), End: end.UTC()}, nil
}

// Today returns the calendar day of now in loc, or of the current time when now is zero.
func Today(now time.Time, loc *time.Location) string {
	if now.IsZero() {
		now = time.Now()
	}
	return Format(now, loc)
}
