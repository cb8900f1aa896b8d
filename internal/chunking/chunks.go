package chunking

import (
	"fmt"
	"strings"
	"time"
)

// Granularity is the time unit a chunk width is measured in.
type Granularity string

const (
	// Day chunks span whole calendar days.
	Day Granularity = "day"
	// Month chunks span whole calendar months keyed by YYYYMM.
	Month Granularity = "month"
)

// ParseGranularity accepts "day" or "month" in any case.
func ParseGranularity(s string) (Granularity, error) {
	switch g := Granularity(strings.ToLower(strings.TrimSpace(s))); g {
	case Day, Month:
		return g, nil
	default:
		return "", fmt.Errorf("%w: unknown granularity %q", ErrInvalidParameter, s)
	}
}

// Chunk is one fixed-width bucket of the timeline. Start and End are inclusive
// calendar days at midnight UTC. Month chunks also carry the keys of their first
// and last month; End then falls on the last day of EndMonth.
type Chunk struct {
	Number      int         `json:"chunk_no"`
	Granularity Granularity `json:"granularity"`
	Start       time.Time   `json:"start_date"`
	End         time.Time   `json:"end_date"`
	StartMonth  MonthKey    `json:"start_month,omitempty"`
	EndMonth    MonthKey    `json:"month_key,omitempty"`
}

// ContainsDay reports whether the calendar day of t lies inside the chunk.
func (c Chunk) ContainsDay(t time.Time) bool {
	d := CivilDay(t)
	return !d.Before(c.Start) && !d.After(c.End)
}

// ContainsMonth reports whether k lies inside a month chunk.
func (c Chunk) ContainsMonth(k MonthKey) bool {
	return c.StartMonth.MonthsUntil(k) >= 0 && k.MonthsUntil(c.EndMonth) >= 0
}

// GenerateChunks parses anchor for the given granularity and returns count chunks of
// width units counted backward from it. Day anchors are YYYY-MM-DD or DD-MON-RR,
// month anchors are YYYYMM.
func GenerateChunks(anchor string, width, count int, granularity Granularity) ([]Chunk, error) {
	switch granularity {
	case Day:
		day, err := ParseDay(anchor)
		if err != nil {
			return nil, err
		}
		return GenerateDayChunks(day, width, count)
	case Month:
		key, err := ParseMonthKey(anchor)
		if err != nil {
			return nil, err
		}
		return GenerateMonthChunks(key, width, count)
	default:
		return nil, fmt.Errorf("%w: unknown granularity %q", ErrInvalidParameter, granularity)
	}
}

// GenerateDayChunks returns count chunks of width days. Chunk 1 ends on the
// calendar day of anchor.
func GenerateDayChunks(anchor time.Time, width, count int) ([]Chunk, error) {
	if err := checkShape(width, count, maxSpanDays); err != nil {
		return nil, err
	}
	if anchor.IsZero() {
		return nil, fmt.Errorf("%w: anchor date is required", ErrInvalidParameter)
	}

	end := CivilDay(anchor)
	chunks := make([]Chunk, count)
	for i := range chunks {
		chunkEnd := end.AddDate(0, 0, -i*width)
		chunks[i] = Chunk{
			Number:      i + 1,
			Granularity: Day,
			Start:       chunkEnd.AddDate(0, 0, -(width - 1)),
			End:         chunkEnd,
		}
	}
	if err := checkStart(chunks[count-1].Start); err != nil {
		return nil, err
	}
	return chunks, nil
}

// GenerateMonthChunks returns count chunks of width months. Chunk 1 ends in the
// anchor month and chunk i ends (i-1)*width months before it.
func GenerateMonthChunks(anchor MonthKey, width, count int) ([]Chunk, error) {
	if err := checkShape(width, count, maxSpanMonths); err != nil {
		return nil, err
	}
	if !anchor.Valid() {
		return nil, fmt.Errorf("%w: month key %d must be YYYYMM", ErrInvalidParameter, int(anchor))
	}

	chunks := make([]Chunk, count)
	for i := range chunks {
		last := anchor.AddMonths(-i * width)
		first := last.AddMonths(-(width - 1))
		chunks[i] = Chunk{
			Number:      i + 1,
			Granularity: Month,
			Start:       first.FirstDay(),
			End:         last.LastDay(),
			StartMonth:  first,
			EndMonth:    last,
		}
	}
	if err := checkStart(chunks[count-1].Start); err != nil {
		return nil, err
	}
	return chunks, nil
}

// Span returns the first and last day covered by chunks.
func Span(chunks []Chunk) (start, end time.Time) {
	for i, c := range chunks {
		if i == 0 || c.Start.Before(start) {
			start = c.Start
		}
		if i == 0 || c.End.After(end) {
			end = c.End
		}
	}
	return start, end
}

// MonthKeys lists every month covered by month chunks, oldest first.
func MonthKeys(chunks []Chunk) []MonthKey {
	var first, last MonthKey
	for _, c := range chunks {
		if c.Granularity != Month {
			continue
		}
		if first == 0 || c.StartMonth.MonthsUntil(first) > 0 {
			first = c.StartMonth
		}
		if last == 0 || last.MonthsUntil(c.EndMonth) > 0 {
			last = c.EndMonth
		}
	}
	if first == 0 {
		return nil
	}
	keys := make([]MonthKey, 0, first.MonthsUntil(last)+1)
	for k := first; k.MonthsUntil(last) >= 0; k = k.AddMonths(1) {
		keys = append(keys, k)
	}
	return keys
}

// Largest width*count a request may cover: the days and months of years 1..9999.
const (
	maxSpanDays   = 3652059
	maxSpanMonths = 9999 * 12
)

func checkShape(width, count, maxSpan int) error {
	if width < 1 {
		return fmt.Errorf("%w: width must be at least 1, got %d", ErrInvalidParameter, width)
	}
	if count < 1 {
		return fmt.Errorf("%w: count must be at least 1, got %d", ErrInvalidParameter, count)
	}
	if width > maxSpan/count {
		return fmt.Errorf("%w: %d chunks of width %d exceed %d units", ErrInvalidParameter, count, width, maxSpan)
	}
	return nil
}

func checkStart(start time.Time) error {
	if start.Year() < 1 {
		return fmt.Errorf("%w: chunks start before year 1", ErrInvalidParameter)
	}
	return nil
}
