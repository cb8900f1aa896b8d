package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "chunkdash/internal/errors"
	"chunkdash/internal/exporter"
	"chunkdash/internal/middleware"
	"chunkdash/internal/services"
	api "chunkdash/pkg/contracts/api/v1"
)

// ExportHandler turns posted rows into downloads
type ExportHandler struct {
	service      ExportService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ExportService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ExportHandler {
	return &ExportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "export_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /export routes
func (h *ExportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/{format}", h.Export)
	return r
}

// Export handles POST /export/{format} for csv, tsv and excel
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	format, err := exporter.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("Export format "+chi.URLParam(r, "format")+" not found", err))
		return
	}

	var req api.ExportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows, err := h.service.DecodeRows(req.Rows)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRowsNotArray):
			h.errorHandler.HandleError(w, r, apierrors.ErrRowsNotArray)
		case errors.Is(err, services.ErrTooManyRows):
			h.errorHandler.HandleError(w, r, apierrors.TooManyRows(err))
		default:
			h.errorHandler.HandleError(w, r, err)
		}
		return
	}

	// Buffer the file so a failed export still yields a problem document
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), &buf, format, rows); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewExportError("Failed to write "+string(format)+" export", err))
		return
	}

	filename := h.service.Filename(req.Filename, format)
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("filename", filename),
			slog.String("error", err.Error()),
		)
	}
}
