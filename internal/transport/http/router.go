package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"familyhub/internal/platform/metrics"
	"familyhub/pkg/platform/httputil"
	"familyhub/pkg/platform/middleware/request"
)

const (
	requestTimeout = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

// Registrar is implemented by every module handler.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck probes one backing dependency.
type HealthCheck func(ctx context.Context) error

// RouterConfig carries the process-wide pieces every route shares.
type RouterConfig struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
	Checks   map[string]HealthCheck
}

// NewRouter wires the shared middleware stack, the operational endpoints and
// the module handlers. Handlers own their auth requirements.
func NewRouter(cfg RouterConfig, handlers ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(request.Time)
	r.Use(middleware.Recoverer)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/health", healthHandler(cfg.Logger, cfg.Checks))
	if cfg.Registry != nil {
		r.Handle("/metrics", metrics.Handler(cfg.Registry))
	}
	for _, h := range handlers {
		h.Register(r)
	}
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(logger *slog.Logger, checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "health check failed", "check", name, "error", err)
				}
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
