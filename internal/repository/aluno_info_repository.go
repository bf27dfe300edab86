package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

// AlunoInfoRepository persists aluno_info rows.
type AlunoInfoRepository struct {
	db *sqlx.DB
}

// NewAlunoInfoRepository creates a new instance of AlunoInfoRepository.
func NewAlunoInfoRepository(db *sqlx.DB) *AlunoInfoRepository {
	return &AlunoInfoRepository{db: db}
}

// Create inserts info and fills the generated id and creation time.
func (r *AlunoInfoRepository) Create(ctx context.Context, info *models.AlunoInfo) error {
	if info.RegistrationState == "" {
		info.RegistrationState = models.RegistrationPre
	}
	if info.PaymentState == "" {
		info.PaymentState = models.PaymentPending
	}

	const query = `INSERT INTO aluno_info (idusuario, email, cpf, data_nascimento, telefone, status_cadastro, status_pagamento, cep, asaas_external_reference) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING idalunoinfo, data_criacao`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		info.UserID, info.Email, info.CPF, info.BirthDate, info.Phone,
		info.RegistrationState, info.PaymentState, info.CEP, info.ExternalReference,
	).Scan(&info.ID, &info.CreatedAt)
	if err != nil {
		return mapConstraintError("create aluno info", err)
	}
	return nil
}

// FindByUserID returns the info attached to a user.
func (r *AlunoInfoRepository) FindByUserID(ctx context.Context, userID int64) (*models.AlunoInfo, error) {
	const query = `SELECT idalunoinfo, idusuario, email, cpf, data_nascimento, data_criacao, telefone, status_cadastro, status_pagamento, cep, asaas_external_reference FROM aluno_info WHERE idusuario = $1 LIMIT 1`
	var info models.AlunoInfo
	if err := conn(ctx, r.db).GetContext(ctx, &info, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find aluno info: %w", err)
	}
	return &info, nil
}
