package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"chunkdash/internal/chunking"
	"chunkdash/internal/datasource"
	"chunkdash/internal/infrastructure"
	"chunkdash/internal/reports"
	api "chunkdash/pkg/contracts/api/v1"
	"chunkdash/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of report spans
const TracerName = "chunkdash.reports"

// maxConcurrentRuns bounds RunAll
const maxConcurrentRuns = 4

// ReportRequest names a report and its parameters
type ReportRequest struct {
	Report string
	Params api.ReportParams
}

// ReportService runs catalog reports against a data source
type ReportService struct {
	catalog   *reports.Catalog
	source    datasource.Source
	logger    *slog.Logger
	metrics   *infrastructure.BusinessMetrics
	tracer    trace.Tracer
	maxChunks int
	now       func() time.Time
}

// NewReportService creates a report service. A maxChunks of zero means no limit.
func NewReportService(catalog *reports.Catalog, source datasource.Source, logger *slog.Logger, metrics *infrastructure.BusinessMetrics, maxChunks int) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	return &ReportService{
		catalog:   catalog,
		source:    source,
		logger:    logger.With(slog.String("service", "reports")),
		metrics:   metrics,
		tracer:    otel.Tracer(TracerName),
		maxChunks: maxChunks,
		now:       time.Now,
	}
}

// List returns the catalog entries in catalog order
func (s *ReportService) List() []domain.ReportInfo {
	defs := s.catalog.List()
	out := make([]domain.ReportInfo, len(defs))
	for i, d := range defs {
		out[i] = d.Info()
	}
	return out
}

// Run executes one report
func (s *ReportService) Run(ctx context.Context, req ReportRequest) (result *domain.ReportResult, err error) {
	started := time.Now()

	ctx, span := s.tracer.Start(ctx, "report.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("report.name", req.Report)),
	)
	defer func() {
		rows := 0
		if result != nil {
			rows = result.Count
		}
		infrastructure.RecordReportRun(ctx, s.metrics, req.Report, time.Since(started), rows, err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	def, err := s.catalog.Get(req.Report)
	if err != nil {
		return nil, err
	}

	params, err := def.ResolveParams(req.Params)
	if err != nil {
		return nil, err
	}
	if s.maxChunks > 0 && params.Count > s.maxChunks {
		return nil, fmt.Errorf("%w: %w: %d exceeds %d", chunking.ErrInvalidParameter, ErrTooManyChunks, params.Count, s.maxChunks)
	}
	span.SetAttributes(
		attribute.String("report.anchor", params.Anchor),
		attribute.Int("report.width", params.Width),
		attribute.Int("report.count", params.Count),
	)

	chunks, err := chunking.GenerateChunks(params.Anchor, params.Width, params.Count, def.Granularity)
	if err != nil {
		return nil, err
	}

	records, err := s.fetch(ctx, def, chunks)
	if err != nil {
		return nil, err
	}

	summaries, err := chunking.Aggregate(chunks, records, def.Options())
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", def.Name, err)
	}

	rows := reports.Tabulate(def, summaries)
	result = &domain.ReportResult{
		Report:      def.Name,
		Title:       def.Title,
		Granularity: string(def.Granularity),
		Columns:     def.ColumnNames(),
		Rows:        rows,
		Count:       len(rows),
		Parameters:  params,
		GeneratedAt: s.now().UTC(),
	}

	s.logger.InfoContext(ctx, "report completed",
		slog.String("report", def.Name),
		slog.Int("chunks", len(chunks)),
		slog.Int("records", len(records)),
		slog.Int("rows", len(rows)),
		slog.Duration("duration", time.Since(started)),
	)
	return result, nil
}

// fetch reads every record the chunks can hold
func (s *ReportService) fetch(ctx context.Context, def *reports.Definition, chunks []chunking.Chunk) ([]chunking.Record, error) {
	if def.Granularity == chunking.Month {
		return s.source.FetchRecordsByMonthKeys(ctx, def.Dataset, chunking.MonthKeys(chunks))
	}
	start, end := chunking.Span(chunks)
	return s.source.FetchRecords(ctx, def.Dataset, start, end)
}

// RunAll executes several reports concurrently. Results keep the request
// order; the first failure cancels the rest and is returned alone.
func (s *ReportService) RunAll(ctx context.Context, reqs []ReportRequest) ([]*domain.ReportResult, error) {
	results := make([]*domain.ReportResult, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentRuns)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := s.Run(ctx, req)
			if err != nil {
				return fmt.Errorf("%s: %w", req.Report, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
