package handlers

import (
	"context"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"pharmaledger/internal/infrastructure/storage/postgres"
)

// Version is reported by the info endpoint; overridden at link time.
var Version = "dev"

// Pinger is a dependency checked by the readiness probe.
type Pinger func(ctx context.Context) error

// PoolStatter exposes connection pool counters.
type PoolStatter interface {
	Stats() postgres.PoolStats
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	pool   PoolStatter
	checks map[string]Pinger
}

// NewHealthHandler creates a new health handler. checks maps a dependency
// name (database, redis) to its ping.
func NewHealthHandler(pool PoolStatter, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{pool: pool, checks: checks}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// Ready handles readiness probe (is the service ready to accept traffic?).
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := http.StatusOK
	results := make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](c.Request.Context()); err != nil {
			results[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	body := gin.H{"status": "ok", "checks": results}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	info := gin.H{
		"app":     "pharmaledger",
		"version": Version,
	}
	if h.pool != nil {
		stat := h.pool.Stats()
		info["database"] = map[string]any{
			"total_conns":    stat.TotalConns,
			"acquired_conns": stat.AcquiredConns,
			"idle_conns":     stat.IdleConns,
			"max_conns":      stat.MaxConns,
		}
	}
	c.JSON(http.StatusOK, info)
}
