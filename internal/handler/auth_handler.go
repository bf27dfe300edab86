package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

// ModuleVersion is reported by the auth liveness endpoint.
const ModuleVersion = "1.0.0"

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResult, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserView, error)
	VerifyToken(token string) (*models.ClaimSet, error)
	FetchLoggedInUser(ctx context.Context, identity *models.Identity) (*dto.UserView, error)
	ChangePassword(ctx context.Context, identity *models.Identity, req dto.ChangePasswordRequest) error
	Impersonate(ctx context.Context, identity *models.Identity, targetID int64) (*dto.LoginResult, error)
	StopImpersonation(ctx context.Context, identity *models.Identity) (*dto.LoginResult, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
	now     func() time.Time
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc, now: time.Now}
}

// Login godoc
// @Summary Authenticate user
// @Description Authenticate by login and password, optionally asserting the user group
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.LoginResponse{
		Sucesso:  true,
		Mensagem: "Login realizado com sucesso",
		Token:    res.Token,
		Usuario:  res.User,
		Grupo:    res.User.Group.Name,
	})
}

// Register godoc
// @Summary Register user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.RegisterRequest true "Registration payload"
// @Success 201 {object} dto.UserResponse
// @Failure 400 {object} response.Envelope
// @Router /auth/cadastrarUsuario [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	user, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.UserResponse{Sucesso: true, Mensagem: "Usuário cadastrado com sucesso!", Usuario: *user})
}

// Validate godoc
// @Summary Validate token
// @Description Decode a session token without consulting the database
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body dto.ValidateTokenRequest true "Token"
// @Success 200 {object} dto.ValidateTokenResponse
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} dto.ValidateTokenResponse
// @Router /auth/validar [post]
func (h *AuthHandler) Validate(c *gin.Context) {
	var req dto.ValidateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Token é obrigatório"))
		return
	}

	claims, err := h.service.VerifyToken(req.Token)
	if err != nil {
		appErr := appErrors.FromError(err)
		response.JSON(c, appErr.Status, dto.ValidateTokenResponse{Sucesso: false, Valido: false, Mensagem: appErr.Message})
		return
	}

	payload := dto.NewTokenPayloadView(claims)
	response.OK(c, dto.ValidateTokenResponse{Sucesso: true, Valido: true, Usuario: &payload})
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	user, err := h.service.FetchLoggedInUser(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}

	res := dto.MeResponse{
		Sucesso:            true,
		Usuario:            *user,
		Grupo:              user.Group.Name,
		Permissoes:         identity.Permissions,
		EstaPersonificando: identity.Impersonating,
	}
	if res.Permissoes == nil {
		res.Permissoes = []string{}
	}
	if identity.Impersonating {
		res.Personificando = &dto.ImpersonationView{OriginalUserID: identity.OriginalUserID, OriginalRole: identity.OriginalRole}
	}
	response.OK(c, res)
}

// Logout godoc
// @Summary Logout
// @Description Tokens are stateless; the client discards its copy
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	response.Message(c, http.StatusOK, "Logout realizado com sucesso")
}

// Test godoc
// @Summary Auth module liveness
// @Tags Authentication
// @Produce json
// @Success 200 {object} dto.HealthCheckResponse
// @Router /auth/teste [get]
func (h *AuthHandler) Test(c *gin.Context) {
	response.OK(c, dto.HealthCheckResponse{
		Sucesso:   true,
		Mensagem:  "Módulo de autenticação funcionando!",
		Timestamp: h.now().UTC(),
		Versao:    ModuleVersion,
	})
}

// ChangePassword godoc
// @Summary Change own password
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.ChangePasswordRequest true "Passwords"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/alterar-senha [post]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), identity, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Senha alterada com sucesso")
}

// Impersonate godoc
// @Summary Impersonate aluno
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Param id path int true "Aluno user ID"
// @Success 200 {object} dto.ImpersonationResponse
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/personificar/{id} [post]
func (h *AuthHandler) Impersonate(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	targetID, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.Impersonate(c.Request.Context(), identity, targetID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ImpersonationResponse{Sucesso: true, Mensagem: "Personificação iniciada", Token: res.Token, Usuario: res.User})
}

// StopImpersonation godoc
// @Summary Stop impersonation
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ImpersonationResponse
// @Failure 400 {object} response.Envelope
// @Router /auth/personificar/encerrar [post]
func (h *AuthHandler) StopImpersonation(c *gin.Context) {
	identity := identityFromContext(c)
	if identity == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	res, err := h.service.StopImpersonation(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.ImpersonationResponse{Sucesso: true, Mensagem: "Personificação encerrada", Token: res.Token, Usuario: res.User})
}
