package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"

	"restobill/internal/caching"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is anything the health checks can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthHandlers handles health check and monitoring endpoints
type HealthHandlers struct {
	db        Pinger
	cache     caching.Cache
	version   string
	startedAt time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db Pinger, cache caching.Cache, version string) *HealthHandlers {
	return &HealthHandlers{
		db:        db,
		cache:     cache,
		version:   version,
		startedAt: time.Now(),
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
}

type check struct {
	Status    string  `json:"status"`
	Message   string  `json:"message,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
}

func checkStore(ctx context.Context, p Pinger) check {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	start := time.Now()
	err := p.Ping(ctx)
	c := check{Status: "healthy", LatencyMs: float64(time.Since(start).Microseconds()) / 1000}
	if err != nil {
		c.Status = "unhealthy"
		c.Message = err.Error()
	}
	return c
}

// LivenessCheck handles GET /health
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, &HealthStatus{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	})
}

// ReadinessCheck handles GET /health/ready. Mongo must answer; the cache is
// reported but never blocks readiness.
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx := c.Request().Context()
	health := &HealthStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  map[string]string{},
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Version:   h.version,
	}

	db := checkStore(ctx, h.db)
	health.Services["database"] = db.Status
	cache := checkStore(ctx, h.cache)
	health.Services["cache"] = cache.Status

	if db.Status != "healthy" {
		health.Status = "not_ready"
		return c.JSON(http.StatusServiceUnavailable, health)
	}
	return c.JSON(http.StatusOK, health)
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandlers) DetailedHealthCheck(c echo.Context) error {
	ctx := c.Request().Context()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	db := checkStore(ctx, h.db)
	cache := checkStore(ctx, h.cache)

	overall := "healthy"
	if db.Status != "healthy" || cache.Status != "healthy" {
		overall = "degraded"
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"overall_status": overall,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"version":        h.version,
		"uptime":         time.Since(h.startedAt).Round(time.Second).String(),
		"goroutines":     runtime.NumGoroutine(),
		"memory": map[string]interface{}{
			"heap_alloc_bytes": mem.HeapAlloc,
			"heap_sys_bytes":   mem.HeapSys,
			"num_gc":           mem.NumGC,
		},
		"checks": map[string]interface{}{
			"database": db,
			"cache": map[string]interface{}{
				"status":     cache.Status,
				"message":    cache.Message,
				"latency_ms": cache.LatencyMs,
				"backend":    h.cache.Backend(),
			},
		},
	})
}
