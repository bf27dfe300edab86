package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/service"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

type pinger interface {
	PingContext(ctx context.Context) error
}

// MetricsHandler exposes observability endpoints.
type MetricsHandler struct {
	metrics *service.MetricsService
	db      pinger
}

// NewMetricsHandler constructs a metrics handler. db may be nil, in which case
// readiness always succeeds.
func NewMetricsHandler(metrics *service.MetricsService, db pinger) *MetricsHandler {
	return &MetricsHandler{metrics: metrics, db: db}
}

// Prometheus serves the Prometheus metrics endpoint.
func (h *MetricsHandler) Prometheus(c *gin.Context) {
	h.metrics.Handler().ServeHTTP(c.Writer, c.Request)
}

// Health godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} dto.HealthCheckResponse
// @Router /health [get]
func (h *MetricsHandler) Health(c *gin.Context) {
	response.OK(c, dto.HealthCheckResponse{
		Sucesso:   true,
		Mensagem:  "API do Sistema de Mentoria funcionando!",
		Timestamp: time.Now().UTC(),
		Versao:    ModuleVersion,
	})
}

// Ready godoc
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /ready [get]
func (h *MetricsHandler) Ready(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"sucesso": false, "status": "indisponivel"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"sucesso": true, "status": "pronto"})
}

// Snapshot godoc
// @Summary Auth metrics snapshot
// @Tags Health
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MetricsSnapshotResponse
// @Router /auth/metricas [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.OK(c, dto.MetricsSnapshotResponse{Sucesso: true, Dados: h.metrics.Snapshot()})
}
