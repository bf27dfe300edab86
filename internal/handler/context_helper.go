package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/middleware"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

func identityFromContext(c *gin.Context) *models.Identity {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil
	}
	return identity
}

func idParam(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "ID inválido")
	}
	return id, nil
}

func invalidPayload(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Dados inválidos: corpo da requisição malformado")
}
