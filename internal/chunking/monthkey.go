package chunking

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MonthKey is a calendar month encoded as the integer YYYYMM.
type MonthKey int

// NewMonthKey builds the key for year and month.
func NewMonthKey(year int, month time.Month) MonthKey {
	return MonthKey(year*100 + int(month))
}

// MonthKeyOf returns the key of the month t falls in.
func MonthKeyOf(t time.Time) MonthKey {
	return NewMonthKey(t.Year(), t.Month())
}

// ParseMonthKey parses a six digit YYYYMM string.
func ParseMonthKey(s string) (MonthKey, error) {
	s = strings.TrimSpace(s)
	if len(s) != 6 {
		return 0, fmt.Errorf("%w: month key %q must be YYYYMM", ErrInvalidParameter, s)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: month key %q must be YYYYMM", ErrInvalidParameter, s)
	}
	k := MonthKey(n)
	if !k.Valid() {
		return 0, fmt.Errorf("%w: month key %q has no month %02d", ErrInvalidParameter, s, n%100)
	}
	return k, nil
}

// Year returns the year part of the key.
func (k MonthKey) Year() int { return int(k) / 100 }

// Month returns the month part of the key.
func (k MonthKey) Month() time.Month { return time.Month(int(k) % 100) }

// Valid reports whether the key names a real month of a four digit year.
func (k MonthKey) Valid() bool {
	m := int(k) % 100
	return k >= 100001 && k <= 999912 && m >= 1 && m <= 12
}

// AddMonths shifts the key by n months, rolling over year boundaries.
func (k MonthKey) AddMonths(n int) MonthKey {
	idx := k.index() + n
	return NewMonthKey(idx/12, time.Month(idx%12+1))
}

// MonthsUntil returns the number of months from k to other.
func (k MonthKey) MonthsUntil(other MonthKey) int {
	return other.index() - k.index()
}

// FirstDay returns midnight UTC of the first day of the month.
func (k MonthKey) FirstDay() time.Time {
	return time.Date(k.Year(), k.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// LastDay returns midnight UTC of the last day of the month.
func (k MonthKey) LastDay() time.Time {
	return k.FirstDay().AddDate(0, 1, -1)
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%04d%02d", k.Year(), int(k.Month()))
}

func (k MonthKey) index() int {
	return k.Year()*12 + int(k.Month()) - 1
}
