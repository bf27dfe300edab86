package middleware

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

// Recovery turns panics into a generic 500 envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered interface{}) {
		logger.Error("panic recovered",
			zap.Any("panic", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.Stack("stack"),
		)
		response.Abort(c, appErrors.Internal(fmt.Errorf("%v", recovered), "panic"))
	})
}
