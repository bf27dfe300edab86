package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sis-mentoria-api/internal/service"
)

func TestRecoveryRendersGenericError(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("nil map write") })

	rec := perform(r, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeEnvelope(t, rec)
	assert.False(t, body.Sucesso)
	assert.Equal(t, "Erro interno do servidor", body.Mensagem)
	assert.NotContains(t, rec.Body.String(), "nil map write")
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestMetricsMiddlewareLabelsByRoute(t *testing.T) {
	metrics := service.NewMetricsService()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/resource/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	perform(r, "/resource/1", "")
	perform(r, "/resource/2", "")
	perform(r, "/nowhere", "")

	series, err := testutil.GatherAndCount(metrics.Registry(), "http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, series)
	assert.Equal(t, uint64(3), metrics.Snapshot().RequestsTotal)
}
