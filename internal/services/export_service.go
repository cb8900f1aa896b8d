package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"chunkdash/internal/config"
	"chunkdash/internal/exporter"
	"chunkdash/internal/infrastructure"
	"chunkdash/pkg/contracts/domain"
)

// ExportService writes client rows as downloadable files
type ExportService struct {
	defaultFilename string
	sheetName       string
	maxRows         int
	logger          *slog.Logger
	metrics         *infrastructure.BusinessMetrics
}

// NewExportService creates an export service
func NewExportService(cfg config.ExportConfig, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = infrastructure.NoopBusinessMetrics()
	}
	if cfg.DefaultFilename == "" {
		cfg.DefaultFilename = config.DefaultExportFilename
	}
	if cfg.SheetName == "" {
		cfg.SheetName = exporter.DefaultSheetName
	}
	return &ExportService{
		defaultFilename: cfg.DefaultFilename,
		sheetName:       cfg.SheetName,
		maxRows:         cfg.MaxRows,
		logger:          logger.With(slog.String("service", "export")),
		metrics:         metrics,
	}
}

// DecodeRows parses the rows member of an export request. Anything but a JSON
// array of objects is ErrRowsNotArray.
func (s *ExportService) DecodeRows(raw json.RawMessage) ([]domain.Row, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrRowsNotArray
	}

	var rows []domain.Row
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRowsNotArray, err)
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyRows, len(rows), s.maxRows)
	}
	return rows, nil
}

// Export writes rows to w in the given format
func (s *ExportService) Export(ctx context.Context, w io.Writer, format domain.ExportFormat, rows []domain.Row) error {
	if err := exporter.Write(w, format, rows, exporter.Options{SheetName: s.sheetName}); err != nil {
		s.logger.ErrorContext(ctx, "export failed",
			slog.String("format", string(format)),
			slog.String("error", err.Error()),
		)
		return err
	}

	infrastructure.RecordExport(ctx, s.metrics, string(format))
	s.logger.DebugContext(ctx, "export written",
		slog.String("format", string(format)),
		slog.Int("rows", len(rows)),
	)
	return nil
}

// Filename returns a safe attachment name carrying the format's extension
func (s *ExportService) Filename(name string, format domain.ExportFormat) string {
	name = strings.TrimSpace(filepath.Base(strings.ReplaceAll(name, "\\", "/")))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '"', r == ';', r == '/', r == '\\':
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		name = s.defaultFilename
	}

	ext := format.Extension()
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return name
}
