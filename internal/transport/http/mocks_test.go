package http

import (
	"context"
	"encoding/json"
	"io"

	"github.com/stretchr/testify/mock"

	"chunkdash/internal/services"
	"chunkdash/pkg/contracts/domain"
)

// MockReportService is a mock for ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) List() []domain.ReportInfo {
	args := m.Called()
	list, _ := args.Get(0).([]domain.ReportInfo)
	return list
}

func (m *MockReportService) Run(ctx context.Context, req services.ReportRequest) (*domain.ReportResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*domain.ReportResult)
	return res, args.Error(1)
}

// MockExportService is a mock for ExportService
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) DecodeRows(raw json.RawMessage) ([]domain.Row, error) {
	args := m.Called(raw)
	rows, _ := args.Get(0).([]domain.Row)
	return rows, args.Error(1)
}

func (m *MockExportService) Export(ctx context.Context, w io.Writer, format domain.ExportFormat, rows []domain.Row) error {
	return m.Called(ctx, w, format, rows).Error(0)
}

func (m *MockExportService) Filename(name string, format domain.ExportFormat) string {
	return m.Called(name, format).String(0)
}

// MockHealthService is a mock for HealthService
type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) HealthCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) ReadinessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) LivenessCheck(ctx context.Context) services.HealthStatus {
	return m.Called(ctx).Get(0).(services.HealthStatus)
}

func (m *MockHealthService) Version() map[string]interface{} {
	return m.Called().Get(0).(map[string]interface{})
}
