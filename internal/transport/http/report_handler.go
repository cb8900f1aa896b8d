package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"chunkdash/internal/chunking"
	"chunkdash/internal/datasource"
	apierrors "chunkdash/internal/errors"
	"chunkdash/internal/middleware"
	"chunkdash/internal/reports"
	"chunkdash/internal/services"
	api "chunkdash/pkg/contracts/api/v1"
	"chunkdash/pkg/contracts/domain"
)

// SummaryRoutes are the form endpoints of the dashboard, one per report.
var SummaryRoutes = []string{"day-chunk", "month-chunk", "fo-day-chunk", "fo-month-chunk"}

// QueryResponse is the body of POST /api/query
type QueryResponse struct {
	Rows []domain.Row `json:"rows"`
}

// ReportHandler serves report runs
type ReportHandler struct {
	service      ReportService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReportHandler {
	return &ReportHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("component", "report_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the /api report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/query", h.Query)
	r.Get("/reports", h.ListReports)
	r.Post("/reports/{name}", h.RunReport)
	return r
}

// Mount registers the dashboard form routes, e.g. POST /day-chunk-summary.
func (h *ReportHandler) Mount(r chi.Router) {
	for _, name := range SummaryRoutes {
		r.Post("/"+name+"-summary", h.summary(name))
	}
}

// Query handles POST /api/query
func (h *ReportHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req api.QueryRequest
	if err := h.validator.Bind(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Run(r.Context(), services.ReportRequest{
		Report: strings.TrimSpace(req.QueryName),
		Params: req.Params,
	})
	if err != nil {
		if errors.Is(err, reports.ErrUnknownReport) {
			h.errorHandler.HandleError(w, r, apierrors.ErrUnknownQuery)
			return
		}
		h.errorHandler.HandleError(w, r, mapReportError(err))
		return
	}

	render.JSON(w, r, QueryResponse{Rows: result.Rows})
}

// ListReports handles GET /api/reports
func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	list := h.service.List()
	render.JSON(w, r, map[string]interface{}{
		"reports": list,
		"count":   len(list),
	})
}

// RunReport handles POST /api/reports/{name}
func (h *ReportHandler) RunReport(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, chi.URLParam(r, "name"))
}

func (h *ReportHandler) summary(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.run(w, r, name)
	}
}

func (h *ReportHandler) run(w http.ResponseWriter, r *http.Request, name string) {
	var params api.ReportParams
	if r.ContentLength != 0 {
		if err := h.validator.Bind(r, &params); err != nil {
			h.errorHandler.HandleError(w, r, err)
			return
		}
	}

	result, err := h.service.Run(r.Context(), services.ReportRequest{Report: name, Params: params})
	if err != nil {
		if errors.Is(err, reports.ErrUnknownReport) {
			h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("Report "+name+" not found", err))
			return
		}
		h.errorHandler.HandleError(w, r, mapReportError(err))
		return
	}

	h.logger.DebugContext(r.Context(), "report served",
		slog.String("report", result.Report),
		slog.Int("rows", result.Count),
	)
	render.JSON(w, r, result)
}

// mapReportError converts service errors to application errors
func mapReportError(err error) error {
	switch {
	case errors.Is(err, chunking.ErrInvalidParameter):
		return apierrors.NewValidationError("Invalid report parameters", err)
	case errors.Is(err, datasource.ErrUnavailable):
		return apierrors.NewDataSourceError("Data source unavailable", err)
	default:
		return err
	}
}
