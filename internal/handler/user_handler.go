package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/export"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

type userService interface {
	ListAlunos(ctx context.Context, query dto.ListAlunosQuery) ([]models.AlunoListItem, models.Pagination, error)
	ExportAlunos(ctx context.Context, format string, query dto.ListAlunosQuery) (*export.Document, error)
	DeactivateAluno(ctx context.Context, id int64) error
	GetSummary(ctx context.Context, id int64) (*dto.UserSummary, error)
	SetActive(ctx context.Context, actor *models.Identity, id int64, active bool) error
}

// UserHandler manages administrative user endpoints.
type UserHandler struct {
	service userService
}

// NewUserHandler constructs a UserHandler.
func NewUserHandler(svc userService) *UserHandler {
	return &UserHandler{service: svc}
}

// ListAlunos godoc
// @Summary List alunos
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param busca query string false "Search by name, login or CPF"
// @Param situacao query string false "ativo or inativo"
// @Param pagina query int false "Page"
// @Param limite query int false "Page size"
// @Success 200 {object} dto.AlunoListResponse
// @Failure 403 {object} response.Envelope
// @Router /auth/alunos [get]
func (h *UserHandler) ListAlunos(c *gin.Context) {
	var query dto.ListAlunosQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	items, page, err := h.service.ListAlunos(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.AlunoListResponse{Sucesso: true, Dados: items, Paginacao: page})
}

// ExportAlunos godoc
// @Summary Export alunos
// @Tags Users
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param formato query string false "csv or pdf"
// @Param busca query string false "Search by name, login or CPF"
// @Param situacao query string false "ativo or inativo"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /auth/alunos/exportar [get]
func (h *UserHandler) ExportAlunos(c *gin.Context) {
	var query dto.ListAlunosQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	doc, err := h.service.ExportAlunos(c.Request.Context(), c.Query("formato"), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// DeactivateAluno godoc
// @Summary Deactivate aluno
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "Aluno user ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/alunos/{id} [delete]
func (h *UserHandler) DeactivateAluno(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.DeactivateAluno(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Aluno desativado com sucesso")
}

// Get godoc
// @Summary User summary
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} dto.UserSummaryResponse
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/usuarios/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.service.GetSummary(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.UserSummaryResponse{Sucesso: true, Usuario: summary.User, Aluno: summary.Info})
}

// UpdateSituacao godoc
// @Summary Toggle user situacao
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param payload body dto.UpdateSituacaoRequest true "Situacao"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/usuarios/{id}/situacao [patch]
func (h *UserHandler) UpdateSituacao(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateSituacaoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	if req.Situacao == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "Dados inválidos: Situação é obrigatório"))
		return
	}

	if err := h.service.SetActive(c.Request.Context(), identityFromContext(c), id, *req.Situacao); err != nil {
		response.Error(c, err)
		return
	}
	response.Message(c, http.StatusOK, "Situação atualizada com sucesso")
}
