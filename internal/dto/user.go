package dto

import "github.com/noah-isme/sis-mentoria-api/internal/models"

// UpdateSituacaoRequest is the body of PATCH /auth/usuarios/:id/situacao.
type UpdateSituacaoRequest struct {
	Situacao *bool `json:"situacao" validate:"required"`
}

// UserSummaryResponse is the body of GET /auth/usuarios/:id.
type UserSummaryResponse struct {
	Sucesso bool              `json:"sucesso"`
	Usuario UserView          `json:"usuario"`
	Aluno   *models.AlunoInfo `json:"aluno,omitempty"`
}

// UserSummary is returned by the user service.
type UserSummary struct {
	User UserView
	Info *models.AlunoInfo
}

// MetricsSnapshotResponse is the body of GET /auth/metricas.
type MetricsSnapshotResponse struct {
	Sucesso bool                   `json:"sucesso"`
	Dados   models.MetricsSnapshot `json:"dados"`
}
