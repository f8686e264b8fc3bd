package ops

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/middlewares"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/controller/rest/handlers/response"
	"github.com/vstrecha/vstrecha/backend/internal/adapters/metrics"
	"github.com/vstrecha/vstrecha/backend/pkg/logger/types"
)

// Check reports whether a dependency is reachable.
type Check func(ctx context.Context) error

type Handler struct {
	checks  map[string]Check
	timeout time.Duration
	logger  *types.Logger
}

func New(checks map[string]Check, logger *types.Logger) *Handler {
	return &Handler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

func (h Handler) Setup(mux *http.ServeMux, middle *middlewares.Handler) {
	middle.Public(mux, "GET /healthz", h.healthz)
	middle.Public(mux, "GET /readyz", h.readyz)
	mux.Handle("GET /metrics", metrics.Handler())
}

func (h Handler) healthz(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h Handler) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := make(map[string]string, len(names))
	code := http.StatusOK
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			h.logger.Warnw("readiness check failed", "check", name, "error", err)
			status[name] = err.Error()
			code = http.StatusServiceUnavailable
			continue
		}
		status[name] = "ok"
	}
	response.JSON(w, code, status)
}
