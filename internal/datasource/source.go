package datasource

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"chunkdash/internal/chunking"
)

// ErrUnavailable is returned when the store cannot be reached or read.
var ErrUnavailable = errors.New("data source unavailable")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// Source supplies records to the aggregator.
type Source interface {
	// FetchRecords returns every record dated in [start, end], whole days.
	FetchRecords(ctx context.Context, ds Dataset, start, end time.Time) ([]chunking.Record, error)
	// FetchRecordsByMonthKeys returns every record whose month key is in keys.
	FetchRecordsByMonthKeys(ctx context.Context, ds Dataset, keys []chunking.MonthKey) ([]chunking.Record, error)
}

// Pinger is implemented by sources that can check connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Dataset maps a fact table onto records.
type Dataset struct {
	Table          string   `yaml:"table" json:"table"`
	DateColumn     string   `yaml:"date_column" json:"date_column"`
	MonthKeyColumn string   `yaml:"month_key_column" json:"month_key_column,omitempty"`
	Metrics        []string `yaml:"metrics" json:"metrics"`
	Dimensions     []string `yaml:"dimensions" json:"dimensions,omitempty"`
}

// Validate checks that every identifier is safe to splice into SQL.
func (d Dataset) Validate() error {
	if d.Table == "" {
		return fmt.Errorf("%w: dataset table is required", chunking.ErrInvalidParameter)
	}
	if d.DateColumn == "" {
		return fmt.Errorf("%w: dataset %s has no date column", chunking.ErrInvalidParameter, d.Table)
	}
	if len(d.Metrics) == 0 {
		return fmt.Errorf("%w: dataset %s has no metric columns", chunking.ErrInvalidParameter, d.Table)
	}

	for _, id := range d.columns() {
		if !identPattern.MatchString(id) {
			return fmt.Errorf("%w: invalid identifier %q", chunking.ErrInvalidParameter, id)
		}
	}
	if !identPattern.MatchString(d.Table) {
		return fmt.Errorf("%w: invalid identifier %q", chunking.ErrInvalidParameter, d.Table)
	}
	return nil
}

// columns lists the selected columns in scan order.
func (d Dataset) columns() []string {
	cols := make([]string, 0, 2+len(d.Metrics)+len(d.Dimensions))
	cols = append(cols, d.DateColumn)
	if d.MonthKeyColumn != "" {
		cols = append(cols, d.MonthKeyColumn)
	}
	cols = append(cols, d.Metrics...)
	cols = append(cols, d.Dimensions...)
	return cols
}
