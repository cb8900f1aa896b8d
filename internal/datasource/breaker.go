package datasource

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"chunkdash/internal/chunking"
	"chunkdash/internal/config"
	"chunkdash/internal/infrastructure"
)

// BreakerSource guards a Source with a circuit breaker. While the breaker is
// open every fetch fails fast with ErrUnavailable.
type BreakerSource struct {
	next   Source
	cb     *gobreaker.CircuitBreaker[[]chunking.Record]
	logger *slog.Logger
}

// NewBreakerSource wraps next with a breaker built from cfg
func NewBreakerSource(next Source, cfg config.BreakerConfig, logger *slog.Logger, m *infrastructure.BusinessMetrics) *BreakerSource {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = infrastructure.NoopBusinessMetrics()
	}
	logger = logger.With(slog.String("component", "datasource_breaker"))

	settings := gobreaker.Settings{
		Name:        "datasource",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			m.BreakerStateChanges.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("from", from.String()),
				attribute.String("to", to.String()),
			))
		},
		IsSuccessful: func(err error) bool {
			// bad requests and caller cancellation say nothing about the store
			return err == nil ||
				errors.Is(err, chunking.ErrInvalidParameter) ||
				errors.Is(err, context.Canceled)
		},
	}

	return &BreakerSource{
		next:   next,
		cb:     gobreaker.NewCircuitBreaker[[]chunking.Record](settings),
		logger: logger,
	}
}

// FetchRecords implements Source
func (b *BreakerSource) FetchRecords(ctx context.Context, ds Dataset, start, end time.Time) ([]chunking.Record, error) {
	records, err := b.cb.Execute(func() ([]chunking.Record, error) {
		return b.next.FetchRecords(ctx, ds, start, end)
	})
	return records, b.translate(err)
}

// FetchRecordsByMonthKeys implements Source
func (b *BreakerSource) FetchRecordsByMonthKeys(ctx context.Context, ds Dataset, keys []chunking.MonthKey) ([]chunking.Record, error) {
	records, err := b.cb.Execute(func() ([]chunking.Record, error) {
		return b.next.FetchRecordsByMonthKeys(ctx, ds, keys)
	})
	return records, b.translate(err)
}

// Ping delegates to the wrapped source when it supports it. An open breaker
// does not block pings.
func (b *BreakerSource) Ping(ctx context.Context) error {
	if p, ok := b.next.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

// State reports the breaker state: closed, half-open or open
func (b *BreakerSource) State() string {
	return b.cb.State().String()
}

func (b *BreakerSource) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
