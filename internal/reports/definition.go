package reports

import (
	"errors"
	"fmt"
	"strings"

	"chunkdash/internal/chunking"
	"chunkdash/internal/datasource"
	api "chunkdash/pkg/contracts/api/v1"
	"chunkdash/pkg/contracts/domain"
)

// ErrUnknownReport is returned for names not in the catalog
var ErrUnknownReport = errors.New("unknown report")

// ColumnSource names the summary value a column shows
type ColumnSource string

const (
	SourceChunkNo        ColumnSource = "chunk_no"
	SourceStartDate      ColumnSource = "start_date"
	SourceEndDate        ColumnSource = "end_date"
	SourceMonthKey       ColumnSource = "month_key"
	SourceSum            ColumnSource = "sum"
	SourceAverage        ColumnSource = "average"
	SourcePresentPeriods ColumnSource = "present_periods"
	SourceDimension      ColumnSource = "dimension"
)

// Column is one output column
type Column struct {
	Name   string       `yaml:"name"`
	Source ColumnSource `yaml:"source"`
	Field  string       `yaml:"field,omitempty"`
}

// Definition describes one report
type Definition struct {
	Name        string               `yaml:"name"`
	Title       string               `yaml:"title"`
	Aliases     []string             `yaml:"aliases,omitempty"`
	Granularity chunking.Granularity `yaml:"granularity"`
	Order       chunking.Order       `yaml:"order,omitempty"`
	GroupBy     []string             `yaml:"group_by,omitempty"`
	Dataset     datasource.Dataset   `yaml:"dataset"`
	Columns     []Column             `yaml:"columns"`
}

// Validate checks the definition against its dataset and normalizes the
// granularity
func (d *Definition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("report name is required")
	}
	g, err := chunking.ParseGranularity(string(d.Granularity))
	if err != nil {
		return fmt.Errorf("report %s: %w", d.Name, err)
	}
	d.Granularity = g
	switch d.Order {
	case chunking.OrderDefault, chunking.OrderChunkAscending, chunking.OrderChunkDescending:
	default:
		return fmt.Errorf("report %s: unknown order %q", d.Name, d.Order)
	}
	if err := d.Dataset.Validate(); err != nil {
		return fmt.Errorf("report %s: %w", d.Name, err)
	}
	if d.Granularity == chunking.Month && d.Dataset.MonthKeyColumn == "" {
		return fmt.Errorf("report %s: month reports need a month key column", d.Name)
	}
	if len(d.Columns) == 0 {
		return fmt.Errorf("report %s: no columns", d.Name)
	}

	for _, g := range d.GroupBy {
		if !contains(d.Dataset.Dimensions, g) {
			return fmt.Errorf("report %s: group %s is not a dataset dimension", d.Name, g)
		}
	}

	seen := make(map[string]bool, len(d.Columns))
	for _, c := range d.Columns {
		if c.Name == "" {
			return fmt.Errorf("report %s: column name is required", d.Name)
		}
		if seen[c.Name] {
			return fmt.Errorf("report %s: duplicate column %s", d.Name, c.Name)
		}
		seen[c.Name] = true

		switch c.Source {
		case SourceChunkNo, SourceStartDate, SourceEndDate, SourcePresentPeriods:
		case SourceMonthKey:
			if d.Granularity != chunking.Month {
				return fmt.Errorf("report %s: column %s needs month granularity", d.Name, c.Name)
			}
		case SourceSum, SourceAverage:
			if !contains(d.Dataset.Metrics, c.Field) {
				return fmt.Errorf("report %s: column %s uses unknown metric %q", d.Name, c.Name, c.Field)
			}
		case SourceDimension:
			if !contains(d.GroupBy, c.Field) {
				return fmt.Errorf("report %s: column %s shows %q which is not grouped", d.Name, c.Name, c.Field)
			}
		default:
			return fmt.Errorf("report %s: column %s has unknown source %q", d.Name, c.Name, c.Source)
		}
	}
	return nil
}

// Options derives the aggregation options from the columns. A metric shown
// both as a sum and as an average is aggregated once.
func (d *Definition) Options() chunking.Options {
	opts := chunking.Options{GroupBy: d.GroupBy, Order: d.Order}
	index := make(map[string]int)
	for _, c := range d.Columns {
		if c.Source != SourceSum && c.Source != SourceAverage {
			continue
		}
		i, ok := index[c.Field]
		if !ok {
			index[c.Field] = len(opts.Metrics)
			opts.Metrics = append(opts.Metrics, chunking.Metric{Field: c.Field})
			i = len(opts.Metrics) - 1
		}
		if c.Source == SourceAverage {
			opts.Metrics[i].Averaged = true
		}
	}
	return opts
}

// ColumnNames lists the output columns in order
func (d *Definition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// ParameterNames lists the request parameters the report reads
func (d *Definition) ParameterNames() []string {
	if d.Granularity == chunking.Month {
		return []string{"baseMonth", "chunkMonths", "monthWidth"}
	}
	return []string{"baseDate", "chunkDays", "numChunks"}
}

// Info summarizes the definition for listings
func (d *Definition) Info() domain.ReportInfo {
	return domain.ReportInfo{
		Name:        d.Name,
		Title:       d.Title,
		Granularity: string(d.Granularity),
		Dataset:     d.Dataset.Table,
		Columns:     d.ColumnNames(),
		Parameters:  d.ParameterNames(),
	}
}

// ResolveParams picks the anchor, width and count for this report's
// granularity. Month width defaults to one month.
func (d *Definition) ResolveParams(p api.ReportParams) (domain.ReportParameters, error) {
	var out domain.ReportParameters
	var missing []string

	if d.Granularity == chunking.Month {
		out = domain.ReportParameters{Anchor: string(p.BaseMonth), Width: int(p.MonthWidth), Count: int(p.ChunkMonths)}
		if out.Width == 0 {
			out.Width = 1
		}
		if out.Anchor == "" {
			missing = append(missing, "baseMonth")
		}
		if out.Count == 0 {
			missing = append(missing, "chunkMonths")
		}
	} else {
		out = domain.ReportParameters{Anchor: string(p.BaseDate), Width: int(p.ChunkDays), Count: int(p.NumChunks)}
		if out.Anchor == "" {
			missing = append(missing, "baseDate")
		}
		if out.Width == 0 {
			missing = append(missing, "chunkDays")
		}
		if out.Count == 0 {
			missing = append(missing, "numChunks")
		}
	}

	if len(missing) > 0 {
		return out, fmt.Errorf("%w: %s requires %s", chunking.ErrInvalidParameter, d.Name, strings.Join(missing, ", "))
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
