package http

import (
	"context"
	"encoding/json"
	"io"

	"chunkdash/internal/services"
	"chunkdash/pkg/contracts/domain"
)

// ReportService runs catalog reports
type ReportService interface {
	List() []domain.ReportInfo
	Run(ctx context.Context, req services.ReportRequest) (*domain.ReportResult, error)
}

// ExportService turns client rows into files
type ExportService interface {
	DecodeRows(raw json.RawMessage) ([]domain.Row, error)
	Export(ctx context.Context, w io.Writer, format domain.ExportFormat, rows []domain.Row) error
	Filename(name string, format domain.ExportFormat) string
}

// HealthService reports service health
type HealthService interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
