package dto

import (
	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

// CreateAlunoRequest is the body of POST /alunos.
type CreateAlunoRequest struct {
	Nome     string `json:"nome" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=50"`
	CPF      string `json:"cpf" validate:"required,cpf"`
	Senha    string `json:"senha,omitempty" validate:"omitempty,min=6,bcryptmax"`
	Telefone string `json:"telefone,omitempty" validate:"omitempty,max=20"`
	CEP      string `json:"cep,omitempty" validate:"omitempty,max=9"`
}

// AlunoCreatedResponse is the body of a successful POST /alunos.
type AlunoCreatedResponse struct {
	Sucesso  bool              `json:"sucesso"`
	Mensagem string            `json:"mensagem"`
	Usuario  UserView          `json:"usuario"`
	Aluno    *models.AlunoInfo `json:"aluno,omitempty"`
}

// AlunoCreated is returned by the aluno service.
type AlunoCreated struct {
	User UserView
	Info *models.AlunoInfo
}

// ListAlunosQuery binds GET /auth/alunos.
type ListAlunosQuery struct {
	Busca    string `form:"busca"`
	Situacao string `form:"situacao"`
	Pagina   int    `form:"pagina"`
	Limite   int    `form:"limite"`
}

// AlunoListResponse is the body of GET /auth/alunos.
type AlunoListResponse struct {
	Sucesso   bool                   `json:"sucesso"`
	Dados     []models.AlunoListItem `json:"dados"`
	Paginacao models.Pagination      `json:"paginacao"`
}
