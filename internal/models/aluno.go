package models

import "time"

// RegistrationStatus mirrors the status_cadastro enum.
type RegistrationStatus string

const (
	RegistrationPre      RegistrationStatus = "PRE_CADASTRO"
	RegistrationComplete RegistrationStatus = "CADASTRO_COMPLETO"
)

// PaymentStatus mirrors the status_pagamento enum.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDENTE"
	PaymentApproved PaymentStatus = "APROVADO"
	PaymentCanceled PaymentStatus = "CANCELADO"
)

// AlunoInfo holds the student specific data attached to a user.
type AlunoInfo struct {
	ID                int64              `db:"idalunoinfo" json:"idalunoinfo"`
	UserID            int64              `db:"idusuario" json:"idusuario"`
	Email             string             `db:"email" json:"email"`
	CPF               *string            `db:"cpf" json:"cpf,omitempty"`
	BirthDate         *time.Time         `db:"data_nascimento" json:"data_nascimento,omitempty"`
	CreatedAt         time.Time          `db:"data_criacao" json:"data_criacao"`
	Phone             *string            `db:"telefone" json:"telefone,omitempty"`
	RegistrationState RegistrationStatus `db:"status_cadastro" json:"status_cadastro"`
	PaymentState      PaymentStatus      `db:"status_pagamento" json:"status_pagamento"`
	CEP               *string            `db:"cep" json:"cep,omitempty"`
	ExternalReference *string            `db:"asaas_external_reference" json:"asaas_external_reference,omitempty"`
}

// AlunoListItem is one line of the administrative student roster.
type AlunoListItem struct {
	UserID            int64               `db:"idusuario" json:"idusuario"`
	Nome              string              `db:"nome" json:"nome"`
	Login             string              `db:"login" json:"login"`
	CPF               *string             `db:"cpf" json:"cpf,omitempty"`
	Active            bool                `db:"situacao" json:"situacao"`
	LastAccess        *time.Time          `db:"ultimo_acesso" json:"ultimo_acesso,omitempty"`
	Email             *string             `db:"email" json:"email,omitempty"`
	Phone             *string             `db:"telefone" json:"telefone,omitempty"`
	RegistrationState *RegistrationStatus `db:"status_cadastro" json:"status_cadastro,omitempty"`
	PaymentState      *PaymentStatus      `db:"status_pagamento" json:"status_pagamento,omitempty"`
	CreatedAt         *time.Time          `db:"data_criacao" json:"data_criacao,omitempty"`
}
