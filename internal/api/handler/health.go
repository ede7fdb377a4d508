package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Dependency is anything the readiness probe must reach.
type Dependency interface {
	Name() string
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	deps    []Dependency
	timeout time.Duration
}

func NewHealthHandler(deps ...Dependency) *HealthHandler {
	return &HealthHandler{deps: deps, timeout: 3 * time.Second}
}

type dependencyStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type readinessResponse struct {
	Status       string                      `json:"status"`
	Dependencies map[string]dependencyStatus `json:"dependencies"`
}

// Liveness confirms the process is serving requests.
//
// @Summary  Liveness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  map[string]string
// @Router   /health [get]
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Readiness pings every dependency and reports 503 when any is down.
//
// @Summary  Readiness probe
// @Tags     health
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	deps := make(map[string]dependencyStatus, len(h.deps))
	healthy := true

	for _, d := range h.deps {
		if err := d.Ping(ctx); err != nil {
			deps[d.Name()] = dependencyStatus{Status: "unhealthy", Error: err.Error()}
			healthy = false
			continue
		}
		deps[d.Name()] = dependencyStatus{Status: "ok"}
	}

	status := "ok"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	return c.JSON(httpStatus, readinessResponse{
		Status:       status,
		Dependencies: deps,
	})
}
