package chunking

import (
	"fmt"
	"strings"
	"time"
)

// DayLayout is the DD-MON-RR rendering used for chunk boundaries in reports.
const DayLayout = "02-Jan-06"

// rrPivot is the first year a two-digit RR year maps to; 50..99 read as 19xx.
const rrPivot = 1950

var dayLayouts = []struct {
	layout   string
	twoDigit bool
}{
	{"2006-01-02", false},
	{DayLayout, true},
	{"2-Jan-06", true},
	{"02-Jan-2006", false},
	{"2-Jan-2006", false},
}

// ParseDay parses an anchor date given as YYYY-MM-DD or DD-MON-RR. Month names
// match case-insensitively and RR years 00..49 are 20xx, 50..99 are 19xx. The
// result is midnight UTC.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range dayLayouts {
		t, err := time.Parse(l.layout, s)
		if err != nil {
			continue
		}
		if l.twoDigit && t.Year() >= rrPivot+100 {
			t = t.AddDate(-100, 0, 0)
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: date %q must be YYYY-MM-DD or DD-MON-RR", ErrInvalidParameter, s)
}

// FormatDay renders t as upper-case DD-MON-RR, e.g. 31-JAN-25.
func FormatDay(t time.Time) string {
	return strings.ToUpper(t.Format(DayLayout))
}

// CivilDay drops the clock and location of t, keeping its calendar date.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
