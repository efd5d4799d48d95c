// Package period handles "YYYY-MM" pay-period keys and the calendar arithmetic built on them.
package period

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	keyLayout    = "2006-01"
	dayKeyLayout = "2006-01-02"
)

var keyPattern = regexp.MustCompile(`^([0-9]{4})-([0-9]{2})$`)

// Range is an inclusive instant range covering one pay period.
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Key returns the "YYYY-MM" key for t in loc.
func Key(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(keyLayout)
}

// DayKey returns the "YYYY-MM-DD" key for t in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(dayKeyLayout)
}

// Parse validates a "YYYY-MM" key and returns its year and month.
func Parse(key string) (int, time.Month, bool) {
	matches := keyPattern.FindStringSubmatch(strings.TrimSpace(key))
	if matches == nil {
		return 0, 0, false
	}
	year, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, 0, false
	}
	month, err := strconv.Atoi(matches[2])
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, time.Month(month), true
}

// IsValid reports whether key is a well-formed "YYYY-MM" key.
func IsValid(key string) bool {
	_, _, ok := Parse(key)
	return ok
}

// MonthRange returns the first and last instant of the calendar month containing year/month.
func MonthRange(year int, month time.Month, loc *time.Location) Range {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Range{Start: start, End: end}
}

// RangeOf returns the range covered by key. Unparseable keys fall back to the month containing now.
func RangeOf(key string, now time.Time, loc *time.Location) Range {
	if year, month, ok := Parse(key); ok {
		return MonthRange(year, month, loc)
	}
	local := now.In(loc)
	return MonthRange(local.Year(), local.Month(), loc)
}

// EndOfMonth is the last instant of the period. Used as the auto-approval deadline.
func EndOfMonth(key string, now time.Time, loc *time.Location) time.Time {
	return RangeOf(key, now, loc).End
}

// Contains reports whether t falls inside r, bounds included.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Days lists every calendar day between start and end (inclusive) at local midnight.
func Days(start, end time.Time, loc *time.Location) []time.Time {
	if start.After(end) {
		return nil
	}
	s := start.In(loc)
	e := end.In(loc)
	cursor := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, loc)
	last := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, loc)

	var days []time.Time
	for !cursor.After(last) {
		days = append(days, cursor)
		cursor = cursor.AddDate(0, 0, 1)
	}
	return days
}

// IsWeekend reports whether t is a Saturday or Sunday.
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// BusinessDayKeys returns the "YYYY-MM-DD" keys of every Monday-to-Friday between start and end.
func BusinessDayKeys(start, end time.Time, loc *time.Location) []string {
	days := Days(start, end, loc)
	keys := make([]string, 0, len(days))
	for _, d := range days {
		if IsWeekend(d) {
			continue
		}
		keys = append(keys, d.Format(dayKeyLayout))
	}
	return keys
}
