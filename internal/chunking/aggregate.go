package chunking

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one input row. Date or MonthKey places it on the timeline; month
// chunks fall back to the month of Date when MonthKey is zero. A metric key mapped
// to an invalid NullDecimal is a NULL value; a missing dimension is a NULL group.
type Record struct {
	Date       time.Time
	MonthKey   MonthKey
	Metrics    map[string]decimal.NullDecimal
	Dimensions map[string]string
}

// Metric selects a record field to sum. Averaged metrics are also divided by the
// number of present periods.
type Metric struct {
	Field    string `yaml:"field" json:"field"`
	Averaged bool   `yaml:"averaged" json:"averaged"`
}

// Order controls the primary sort of aggregated rows.
type Order string

const (
	// OrderDefault sorts day chunks descending and month chunks ascending.
	OrderDefault Order = ""
	// OrderChunkAscending sorts by chunk number, lowest first.
	OrderChunkAscending Order = "chunk_asc"
	// OrderChunkDescending sorts by chunk number, highest first.
	OrderChunkDescending Order = "chunk_desc"
)

// Options configures Aggregate.
type Options struct {
	Metrics []Metric
	GroupBy []string
	Order   Order
}

// Dimension is one grouping value of a summary row.
type Dimension struct {
	Name  string
	Value string
	Valid bool
}

// Summary is the aggregate of one chunk, or of one dimension group in a chunk.
type Summary struct {
	Chunk          Chunk
	Dimensions     []Dimension
	Sums           map[string]decimal.NullDecimal
	Averages       map[string]decimal.NullDecimal
	PresentPeriods int
}

// Sum returns the sum of field, invalid when no value contributed.
func (s Summary) Sum(field string) decimal.NullDecimal { return s.Sums[field] }

// Average returns the rounded average of field, invalid when no period was present.
func (s Summary) Average(field string) decimal.NullDecimal { return s.Averages[field] }

// Dimension returns the value of the named dimension.
func (s Summary) Dimension(name string) (string, bool) {
	for _, d := range s.Dimensions {
		if d.Name == name {
			return d.Value, d.Valid
		}
	}
	return "", false
}

// Aggregate buckets records into chunks and folds the requested metrics per chunk
// and dimension group. Every chunk yields at least one row; a chunk without
// records yields a single row with NULL sums, NULL dimensions and no periods.
// Records outside every chunk are ignored.
func Aggregate(chunks []Chunk, records []Record, opts Options) ([]Summary, error) {
	if err := validateOptions(chunks, records, opts); err != nil {
		return nil, err
	}

	buckets := make([]*chunkBucket, len(chunks))
	for i := range chunks {
		buckets[i] = &chunkBucket{groups: make(map[string]*group)}
	}

	for i, r := range records {
		idx, err := locate(chunks, r)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if idx < 0 {
			continue
		}
		buckets[idx].add(r, opts)
	}

	out := make([]Summary, 0, len(chunks))
	for i, c := range chunks {
		b := buckets[i]
		if len(b.order) == 0 {
			out = append(out, emptySummary(c, opts))
			continue
		}
		for _, key := range b.order {
			out = append(out, b.groups[key].summary(c, opts))
		}
	}

	sortSummaries(out, resolveOrder(chunks, opts.Order))
	return out, nil
}

func validateOptions(chunks []Chunk, records []Record, opts Options) error {
	if len(chunks) == 0 {
		return fmt.Errorf("%w: no chunks to aggregate", ErrInvalidParameter)
	}
	if len(opts.Metrics) == 0 {
		return fmt.Errorf("%w: at least one metric is required", ErrInvalidParameter)
	}
	switch opts.Order {
	case OrderDefault, OrderChunkAscending, OrderChunkDescending:
	default:
		return fmt.Errorf("%w: unknown order %q", ErrInvalidParameter, opts.Order)
	}

	seen := make(map[string]bool, len(opts.Metrics))
	for _, m := range opts.Metrics {
		if m.Field == "" {
			return fmt.Errorf("%w: metric field is empty", ErrInvalidParameter)
		}
		if seen[m.Field] {
			return fmt.Errorf("%w: metric %q listed twice", ErrInvalidParameter, m.Field)
		}
		seen[m.Field] = true
	}
	for _, name := range opts.GroupBy {
		if name == "" {
			return fmt.Errorf("%w: dimension name is empty", ErrInvalidParameter)
		}
	}

	if len(records) == 0 {
		return nil
	}
	for _, m := range opts.Metrics {
		if !fieldPresent(records, m.Field) {
			return fmt.Errorf("%w: metric %q is not a field of the records", ErrInvalidParameter, m.Field)
		}
	}
	return nil
}

func fieldPresent(records []Record, field string) bool {
	for _, r := range records {
		if _, ok := r.Metrics[field]; ok {
			return true
		}
	}
	return false
}

// locate returns the index of the chunk holding r, or -1.
func locate(chunks []Chunk, r Record) (int, error) {
	for i, c := range chunks {
		switch c.Granularity {
		case Month:
			key := r.MonthKey
			if key == 0 {
				if r.Date.IsZero() {
					return -1, fmt.Errorf("%w: record has neither date nor month key", ErrInvalidParameter)
				}
				key = MonthKeyOf(r.Date)
			}
			if c.ContainsMonth(key) {
				return i, nil
			}
		default:
			if r.Date.IsZero() {
				return -1, fmt.Errorf("%w: record has no date", ErrInvalidParameter)
			}
			if c.ContainsDay(r.Date) {
				return i, nil
			}
		}
	}
	return -1, nil
}

type chunkBucket struct {
	groups map[string]*group
	order  []string
}

func (b *chunkBucket) add(r Record, opts Options) {
	dims := make([]Dimension, len(opts.GroupBy))
	var key strings.Builder
	for i, name := range opts.GroupBy {
		v, ok := r.Dimensions[name]
		dims[i] = Dimension{Name: name, Value: v, Valid: ok}
		if ok {
			key.WriteString("v")
			key.WriteString(v)
		} else {
			key.WriteString("n")
		}
		key.WriteByte(0)
	}

	g, ok := b.groups[key.String()]
	if !ok {
		g = &group{
			dims:    dims,
			sums:    make(map[string]decimal.Decimal, len(opts.Metrics)),
			periods: make(map[period]struct{}),
		}
		b.groups[key.String()] = g
		b.order = append(b.order, key.String())
	}
	g.add(r, opts.Metrics)
}

type period struct {
	day   time.Time
	month MonthKey
}

type group struct {
	dims    []Dimension
	sums    map[string]decimal.Decimal
	periods map[period]struct{}
}

func (g *group) add(r Record, metrics []Metric) {
	if r.Date.IsZero() {
		g.periods[period{month: r.MonthKey}] = struct{}{}
	} else {
		g.periods[period{day: CivilDay(r.Date)}] = struct{}{}
	}

	for _, m := range metrics {
		v, ok := r.Metrics[m.Field]
		if !ok || !v.Valid {
			continue
		}
		if sum, seen := g.sums[m.Field]; seen {
			g.sums[m.Field] = sum.Add(v.Decimal)
		} else {
			g.sums[m.Field] = v.Decimal
		}
	}
}

func (g *group) summary(c Chunk, opts Options) Summary {
	s := Summary{
		Chunk:          c,
		Dimensions:     g.dims,
		Sums:           make(map[string]decimal.NullDecimal, len(opts.Metrics)),
		Averages:       make(map[string]decimal.NullDecimal),
		PresentPeriods: len(g.periods),
	}
	for _, m := range opts.Metrics {
		sum, ok := g.sums[m.Field]
		s.Sums[m.Field] = decimal.NullDecimal{Decimal: sum, Valid: ok}
		if !m.Averaged {
			continue
		}
		if !ok || s.PresentPeriods == 0 {
			s.Averages[m.Field] = decimal.NullDecimal{}
			continue
		}
		s.Averages[m.Field] = decimal.NewNullDecimal(average(sum, s.PresentPeriods))
	}
	return s
}

// average rounds half away from zero to two decimals.
func average(sum decimal.Decimal, periods int) decimal.Decimal {
	return sum.DivRound(decimal.NewFromInt(int64(periods)), 2)
}

func emptySummary(c Chunk, opts Options) Summary {
	s := Summary{
		Chunk:      c,
		Dimensions: make([]Dimension, len(opts.GroupBy)),
		Sums:       make(map[string]decimal.NullDecimal, len(opts.Metrics)),
		Averages:   make(map[string]decimal.NullDecimal),
	}
	for i, name := range opts.GroupBy {
		s.Dimensions[i] = Dimension{Name: name}
	}
	for _, m := range opts.Metrics {
		s.Sums[m.Field] = decimal.NullDecimal{}
		if m.Averaged {
			s.Averages[m.Field] = decimal.NullDecimal{}
		}
	}
	return s
}

func resolveOrder(chunks []Chunk, o Order) Order {
	if o != OrderDefault {
		return o
	}
	if chunks[0].Granularity == Month {
		return OrderChunkAscending
	}
	return OrderChunkDescending
}

func sortSummaries(rows []Summary, order Order) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Chunk.Number != b.Chunk.Number {
			if order == OrderChunkAscending {
				return a.Chunk.Number < b.Chunk.Number
			}
			return a.Chunk.Number > b.Chunk.Number
		}
		return lessDimensions(a.Dimensions, b.Dimensions)
	})
}

// lessDimensions compares dimension values in order, NULL after any value.
func lessDimensions(a, b []Dimension) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		x, y := a[i], b[i]
		switch {
		case x.Valid && !y.Valid:
			return true
		case !x.Valid && y.Valid:
			return false
		case x.Valid && x.Value != y.Value:
			return x.Value < y.Value
		}
	}
	return false
}
