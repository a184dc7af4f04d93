// Package dateutils provides the holiday calendar and the business-day
// arithmetic used to derive clearing dates from it.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// DateLayoutISO is the layout of holiday entries (YYYY-MM-DD)
const DateLayoutISO = "2006-01-02"

// WildcardYear marks a holiday that recurs every year
const WildcardYear = 9999

// Holiday is one entry of the clearing holiday calendar. Raw keeps the token
// exactly as written in the settings file.
type Holiday struct {
	Year  int
	Month time.Month
	Day   int
	Raw   string
}

// ParseHoliday parses a YYYY-MM-DD token. 9999-01-01 is a valid token.
func ParseHoliday(s string) (Holiday, error) {
	raw := strings.TrimSpace(s)
	t, err := time.Parse(DateLayoutISO, raw)
	if err != nil {
		return Holiday{}, fmt.Errorf("invalid holiday date '%s': expected YYYY-MM-DD", s)
	}
	return Holiday{Year: t.Year(), Month: t.Month(), Day: t.Day(), Raw: raw}, nil
}

// Wildcard reports whether the holiday uses the 9999 placeholder year
func (h Holiday) Wildcard() bool {
	return h.Year == WildcardYear
}

// On projects the holiday onto the given year. ok is false when the day
// does not exist in that year (29 February outside leap years).
func (h Holiday) On(year int, loc *time.Location) (t time.Time, ok bool) {
	if loc == nil {
		loc = time.UTC
	}
	t = time.Date(year, h.Month, h.Day, 0, 0, 0, 0, loc)
	return t, t.Month() == h.Month && t.Day() == h.Day
}

func (h Holiday) String() string {
	if h.Raw != "" {
		return h.Raw
	}
	return fmt.Sprintf("%04d-%02d-%02d", h.Year, int(h.Month), h.Day)
}

// IsWeekend checks if a date falls on a weekend (Saturday or Sunday)
func IsWeekend(date time.Time) bool {
	day := date.Weekday()
	return day == time.Saturday || day == time.Sunday
}

// IsBusinessDay checks if a date is neither a weekend nor one of offDays
func IsBusinessDay(date time.Time, offDays []time.Time) bool {
	if IsWeekend(date) {
		return false
	}
	for _, off := range offDays {
		if CompareDates(date, off) == 0 {
			return false
		}
	}
	return true
}

// StartOfMonth returns the first day of the month for a given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for a given date
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// CompareDates compares two dates ignoring the time component and returns:
//
//	-1 if date1 is before date2
//	 0 if date1 is equal to date2
//	 1 if date1 is after date2
func CompareDates(date1, date2 time.Time) int {
	date1 = time.Date(date1.Year(), date1.Month(), date1.Day(), 0, 0, 0, 0, time.UTC)
	date2 = time.Date(date2.Year(), date2.Month(), date2.Day(), 0, 0, 0, 0, time.UTC)

	if date1.Before(date2) {
		return -1
	} else if date1.After(date2) {
		return 1
	}
	return 0
}

// OffDays projects the holidays onto the year of day. The year written in
// the calendar is ignored, which is how 9999 entries recur. Entries that do
// not exist in that year are skipped.
func OffDays(day time.Time, holidays []Holiday) []time.Time {
	days := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		if t, ok := h.On(day.Year(), day.Location()); ok {
			days = append(days, t)
		}
	}
	return days
}

// MonthUltimo returns the last business day of the month of day
func MonthUltimo(day time.Time, offDays []time.Time) time.Time {
	ultimo := EndOfMonth(day)
	for !IsBusinessDay(ultimo, offDays) {
		ultimo = ultimo.AddDate(0, 0, -1)
	}
	return ultimo
}

// MonthUltimoPlusOne returns the first business day of the month of day
func MonthUltimoPlusOne(day time.Time, offDays []time.Time) time.Time {
	upone := StartOfMonth(day)
	for !IsBusinessDay(upone, offDays) {
		upone = upone.AddDate(0, 0, 1)
	}
	return upone
}

// previousUltimo returns the ultimo preceding a given ultimo+1 day
func previousUltimo(uplusone time.Time, offDays []time.Time) time.Time {
	ultimo := uplusone.AddDate(0, 0, -1)
	for !IsBusinessDay(ultimo, offDays) {
		ultimo = ultimo.AddDate(0, 0, -1)
	}
	return ultimo
}

// ClearingDate returns the posting date for items cleared on today.
// Past the month ultimo the ultimo is used; up to and including ultimo+1
// items still belong to the previous month's ultimo; otherwise today.
func ClearingDate(today time.Time, holidays []Holiday) time.Time {
	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	offDays := OffDays(day, holidays)
	uplusone := MonthUltimoPlusOne(day, offDays)
	ultimo := MonthUltimo(day, offDays)

	switch {
	case ultimo.Before(day):
		return ultimo
	case !day.After(uplusone):
		return previousUltimo(uplusone, offDays)
	default:
		return day
	}
}
