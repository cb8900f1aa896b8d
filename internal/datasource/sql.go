package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"chunkdash/internal/chunking"
	"chunkdash/internal/config"
	"chunkdash/internal/infrastructure"
)

// dialect covers the differences between the supported drivers
type dialect struct {
	name        string
	placeholder func(n int) string
	dateArg     func(t time.Time) any
}

var dialects = map[string]dialect{
	config.DriverPostgres: {
		name:        config.DriverPostgres,
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		dateArg:     func(t time.Time) any { return t },
	},
	config.DriverSQLite: {
		name:        config.DriverSQLite,
		placeholder: func(int) string { return "?" },
		dateArg:     func(t time.Time) any { return t.Format("2006-01-02") },
	},
}

// SQLSource reads records from a SQL database
type SQLSource struct {
	db           *sql.DB
	dialect      dialect
	queryTimeout time.Duration
	logger       *slog.Logger
	metrics      *infrastructure.BusinessMetrics
	tracer       trace.Tracer
}

// Option configures a SQLSource
type Option func(*SQLSource)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *SQLSource) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metric instruments
func WithMetrics(m *infrastructure.BusinessMetrics) Option {
	return func(s *SQLSource) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithQueryTimeout bounds every fetch
func WithQueryTimeout(d time.Duration) Option {
	return func(s *SQLSource) { s.queryTimeout = d }
}

// Open connects to the configured database. The connection is verified lazily.
func Open(cfg config.DatabaseConfig, opts ...Option) (*SQLSource, error) {
	if _, ok := dialects[cfg.Driver]; !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrUnavailable, cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	opts = append([]Option{WithQueryTimeout(cfg.QueryTimeout)}, opts...)
	return NewSQLSource(db, cfg.Driver, opts...)
}

// NewSQLSource wraps an open database handle
func NewSQLSource(db *sql.DB, driver string, opts ...Option) (*SQLSource, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	s := &SQLSource{
		db:      db,
		dialect: d,
		logger:  slog.Default(),
		metrics: infrastructure.NoopBusinessMetrics(),
		tracer:  otel.Tracer("chunkdash/datasource"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(slog.String("component", "datasource"), slog.String("driver", d.name))
	return s, nil
}

// Ping checks that the database answers
func (s *SQLSource) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Close releases the connection pool
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle
func (s *SQLSource) DB() *sql.DB {
	return s.db
}

// FetchRecords implements Source
func (s *SQLSource) FetchRecords(ctx context.Context, ds Dataset, start, end time.Time) ([]chunking.Record, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	start, end = chunking.CivilDay(start), chunking.CivilDay(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", chunking.ErrInvalidParameter,
			end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s >= %s AND %s < %s",
		strings.Join(ds.columns(), ", "), ds.Table,
		ds.DateColumn, s.dialect.placeholder(1),
		ds.DateColumn, s.dialect.placeholder(2))

	return s.fetch(ctx, ds, query, s.dialect.dateArg(start), s.dialect.dateArg(end.AddDate(0, 0, 1)))
}

// FetchRecordsByMonthKeys implements Source
func (s *SQLSource) FetchRecordsByMonthKeys(ctx context.Context, ds Dataset, keys []chunking.MonthKey) ([]chunking.Record, error) {
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	if ds.MonthKeyColumn == "" {
		return nil, fmt.Errorf("%w: dataset %s has no month key column", chunking.ErrInvalidParameter, ds.Table)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	marks := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		marks[i] = s.dialect.placeholder(i + 1)
		args[i] = int(k)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s IN (%s)",
		strings.Join(ds.columns(), ", "), ds.Table,
		ds.MonthKeyColumn, strings.Join(marks, ", "))

	return s.fetch(ctx, ds, query, args...)
}

func (s *SQLSource) fetch(ctx context.Context, ds Dataset, query string, args ...any) (records []chunking.Record, err error) {
	ctx, span := s.tracer.Start(ctx, "datasource.fetch", trace.WithAttributes(
		attribute.String("db.system", s.dialect.name),
		attribute.String("db.sql.table", ds.Table),
	))
	started := time.Now()
	defer func() {
		infrastructure.RecordDataSourceFetch(ctx, s.metrics, ds.Table, time.Since(started), len(records), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if s.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.queryTimeout)
		defer cancel()
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, s.unavailable(ctx, ds, "acquire connection", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, s.unavailable(ctx, ds, "query", err)
	}
	defer rows.Close()

	cols := ds.columns()
	values := make([]any, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, s.unavailable(ctx, ds, "scan", err)
		}
		rec, err := toRecord(ds, values)
		if err != nil {
			return nil, s.unavailable(ctx, ds, "decode row", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.unavailable(ctx, ds, "iterate rows", err)
	}

	s.logger.DebugContext(ctx, "records fetched",
		slog.String("table", ds.Table),
		slog.Int("records", len(records)),
		slog.Duration("duration", time.Since(started)),
	)
	return records, nil
}

func (s *SQLSource) unavailable(ctx context.Context, ds Dataset, op string, err error) error {
	s.logger.ErrorContext(ctx, "data source fetch failed",
		slog.String("table", ds.Table),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, op, ds.Table, err)
}

// toRecord decodes one scanned row laid out as Dataset.columns
func toRecord(ds Dataset, values []any) (chunking.Record, error) {
	var rec chunking.Record
	i := 0

	date, err := toDate(values[i])
	if err != nil {
		return rec, fmt.Errorf("column %s: %w", ds.DateColumn, err)
	}
	rec.Date = date
	i++

	if ds.MonthKeyColumn != "" {
		key, err := toMonthKey(values[i])
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", ds.MonthKeyColumn, err)
		}
		rec.MonthKey = key
		i++
	}

	rec.Metrics = make(map[string]decimal.NullDecimal, len(ds.Metrics))
	for _, col := range ds.Metrics {
		v, err := toDecimal(values[i])
		if err != nil {
			return rec, fmt.Errorf("column %s: %w", col, err)
		}
		rec.Metrics[col] = v
		i++
	}

	if len(ds.Dimensions) > 0 {
		rec.Dimensions = make(map[string]string, len(ds.Dimensions))
		for _, col := range ds.Dimensions {
			if v, ok := toDimension(values[i]); ok {
				rec.Dimensions[col] = v
			}
			i++
		}
	}
	return rec, nil
}
