package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"chunkdash/internal/datasource"
	"chunkdash/pkg/contracts"
)

const readinessTimeout = 2 * time.Second

// BreakerState reports a circuit breaker state
type BreakerState interface {
	State() string
}

// HealthService provides health check functionality
type HealthService struct {
	pinger     datasource.Pinger
	breaker    BreakerState
	reportsLen int
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Version   string                   `json:"version"`
	Runtime   map[string]interface{}   `json:"runtime,omitempty"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewHealthService creates a health service. breaker may be nil when the
// data source is not guarded.
func NewHealthService(pinger datasource.Pinger, breaker BreakerState, reportsLen int, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		pinger:     pinger,
		breaker:    breaker,
		reportsLen: reportsLen,
		startTime:  time.Now(),
		logger:     logger.With(slog.String("service", "health")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   contracts.Version,
	}
}

// ReadinessCheck pings the database and inspects the breaker
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Services: map[string]ServiceHealth{
			"database": hs.checkDatabase(ctx),
			"breaker":  hs.checkBreaker(),
			"catalog":  hs.checkCatalog(),
		},
	}

	for name, sh := range status.Services {
		if sh.Status != "ready" {
			status.Status = "not_ready"
			hs.logger.WarnContext(ctx, "readiness check failed",
				slog.String("dependency", name),
				slog.String("message", sh.Message))
		}
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   contracts.Version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	info := contracts.GetVersionInfo()
	return map[string]interface{}{
		"version":      info.Version,
		"api_version":  contracts.APIVersion,
		"build_time":   info.BuildTime,
		"git_commit":   info.GitCommit,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}
}

func (hs *HealthService) checkDatabase(ctx context.Context) ServiceHealth {
	if hs.pinger == nil {
		return ServiceHealth{Status: "not_ready", Message: "data source not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	if err := hs.pinger.Ping(ctx); err != nil {
		return ServiceHealth{Status: "not_ready", Message: err.Error()}
	}
	return ServiceHealth{Status: "ready"}
}

func (hs *HealthService) checkBreaker() ServiceHealth {
	if hs.breaker == nil {
		return ServiceHealth{Status: "ready", Message: "disabled"}
	}
	state := hs.breaker.State()
	if state == "open" {
		return ServiceHealth{Status: "not_ready", Message: "circuit open"}
	}
	return ServiceHealth{Status: "ready", Message: state}
}

func (hs *HealthService) checkCatalog() ServiceHealth {
	if hs.reportsLen == 0 {
		return ServiceHealth{Status: "not_ready", Message: "no reports loaded"}
	}
	return ServiceHealth{Status: "ready", Message: fmt.Sprintf("%d reports", hs.reportsLen)}
}
