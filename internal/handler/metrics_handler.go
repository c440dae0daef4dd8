package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-journal-api/internal/service"
)

// MetricsHandler serves the Prometheus scrape endpoint and the health probe.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      *sqlx.DB
}

func NewMetricsHandler(metrics *service.MetricsService, db *sqlx.DB) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db}
}

// Prometheus exposes the metrics registry in the Prometheus text format.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	if h.metrics == nil {
		c.Status(http.StatusServiceUnavailable)
		return
	}
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health reports liveness plus a database ping. A failed ping answers 503 so
// the orchestrator stops routing traffic before journal reads start erroring.
func (h *MetricsHandler) Health(c *gin.Context) {
	status := http.StatusOK
	overall := "ok"
	dbState := "ok"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			overall = "degraded"
			dbState = "unreachable"
		}
	}
	c.JSON(status, gin.H{
		"status":   overall,
		"database": dbState,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}
