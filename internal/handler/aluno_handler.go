package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

type alunoService interface {
	Create(ctx context.Context, req dto.CreateAlunoRequest) (*dto.AlunoCreated, error)
}

// AlunoHandler exposes student self registration.
type AlunoHandler struct {
	service alunoService
}

// NewAlunoHandler constructs the handler.
func NewAlunoHandler(svc alunoService) *AlunoHandler {
	return &AlunoHandler{service: svc}
}

// Create godoc
// @Summary Register aluno
// @Description Creates an aluno whose login is the email address
// @Tags Alunos
// @Accept json
// @Produce json
// @Param payload body dto.CreateAlunoRequest true "Aluno payload"
// @Success 201 {object} dto.AlunoCreatedResponse
// @Failure 400 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /alunos [post]
func (h *AlunoHandler) Create(c *gin.Context) {
	var req dto.CreateAlunoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.AlunoCreatedResponse{
		Sucesso:  true,
		Mensagem: "Aluno cadastrado com sucesso!",
		Usuario:  created.User,
		Aluno:    created.Info,
	})
}
