package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

// Envelope is the error contract shared by every endpoint.
type Envelope struct {
	Sucesso  bool   `json:"sucesso"`
	Mensagem string `json:"mensagem,omitempty"`
	Codigo   string `json:"codigo,omitempty"`
}

// JSON sends a success payload. Payloads embed Envelope themselves so field order
// stays stable in the rendered body.
func JSON(c *gin.Context, status int, payload interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, payload)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusOK, payload)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, payload interface{}) {
	JSON(c, http.StatusCreated, payload)
}

// Message sends a bare success envelope.
func Message(c *gin.Context, status int, message string) {
	JSON(c, status, Envelope{Sucesso: true, Mensagem: message})
}

// Error sends an error response converting the error to the common structure.
// Server side failures are recorded on the context for the request logger and never
// leak their cause to the client.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Sucesso: false, Mensagem: appErr.Message, Codigo: appErr.Code})
}

// Abort renders the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
