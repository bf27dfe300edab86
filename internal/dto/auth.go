package dto

import (
	"time"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Login string `json:"login" validate:"required,min=3,max=50"`
	Senha string `json:"senha" validate:"required,min=6"`
	Grupo string `json:"grupo,omitempty" validate:"omitempty,oneof=aluno administrador"`
}

// RegisterRequest is the body of POST /auth/cadastrarUsuario.
type RegisterRequest struct {
	Nome  string `json:"nome" validate:"required,min=2,max=100"`
	Login string `json:"login" validate:"required,min=3,max=50"`
	Senha string `json:"senha" validate:"required,min=6,bcryptmax"`
	Grupo string `json:"grupo" validate:"required"`
}

// ChangePasswordRequest is the body of POST /auth/alterar-senha.
type ChangePasswordRequest struct {
	SenhaAtual string `json:"senhaAtual" validate:"required"`
	NovaSenha  string `json:"novaSenha" validate:"required,min=6,bcryptmax"`
}

// ValidateTokenRequest is the body of POST /auth/validar.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// GroupView is the public shape of a group.
type GroupView struct {
	ID          int64  `json:"idgrupo"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
}

// UserView is a user without its password digest.
type UserView struct {
	ID         int64      `json:"idusuario"`
	Nome       string     `json:"nome"`
	Login      string     `json:"login"`
	CPF        *string    `json:"cpf,omitempty"`
	Active     bool       `json:"situacao"`
	LastAccess *time.Time `json:"ultimo_acesso,omitempty"`
	Group      GroupView  `json:"grupo"`
}

// NewUserView projects a joined user row.
func NewUserView(u *models.UserWithGroup) UserView {
	group := GroupView{ID: u.GroupID, Name: u.GroupName}
	if group.Name == "" {
		group.Name = "desconhecido"
	}
	if u.GroupDescription != nil {
		group.Description = *u.GroupDescription
	}
	return UserView{
		ID:         u.ID,
		Nome:       u.Nome,
		Login:      u.Login,
		CPF:        u.CPF,
		Active:     u.Active,
		LastAccess: u.LastAccess,
		Group:      group,
	}
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token string
	User  UserView
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Sucesso  bool     `json:"sucesso"`
	Mensagem string   `json:"mensagem"`
	Token    string   `json:"token"`
	Usuario  UserView `json:"usuario"`
	Grupo    string   `json:"grupo"`
}

// MeResponse is the body of GET /auth/me.
type MeResponse struct {
	Sucesso            bool               `json:"sucesso"`
	Usuario            UserView           `json:"usuario"`
	Grupo              string             `json:"grupo"`
	Permissoes         []string           `json:"permissoes"`
	EstaPersonificando bool               `json:"estaPersonificando"`
	Personificando     *ImpersonationView `json:"personificando,omitempty"`
}

// ImpersonationView describes the identity behind an impersonated session.
type ImpersonationView struct {
	OriginalUserID int64  `json:"idOriginal"`
	OriginalRole   string `json:"papelOriginal"`
}

// RoleView is the nested block of TokenPayloadView.
type RoleView struct {
	RoleName      string             `json:"nome_papel"`
	Permissions   []string           `json:"permissoes"`
	Impersonation *ImpersonationView `json:"personificando,omitempty"`
}

// TokenPayloadView is the decoded token as returned by POST /auth/validar.
type TokenPayloadView struct {
	UserID        int64    `json:"idusuario"`
	Login         string   `json:"login"`
	GroupID       int64    `json:"grupo"`
	Role          string   `json:"nomeGrupo"`
	Impersonating bool     `json:"estaPersonificando"`
	Mentoria      RoleView `json:"sis-mentoria"`
}

// NewTokenPayloadView projects decoded claims.
func NewTokenPayloadView(c *models.ClaimSet) TokenPayloadView {
	view := TokenPayloadView{
		UserID:        c.UserID,
		Login:         c.Login,
		GroupID:       c.GroupID,
		Role:          c.Role,
		Impersonating: c.Impersonating(),
		Mentoria:      RoleView{RoleName: c.Role, Permissions: c.Permissions},
	}
	if c.Impersonation != nil {
		view.Mentoria.Impersonation = &ImpersonationView{
			OriginalUserID: c.Impersonation.OriginalUserID,
			OriginalRole:   c.Impersonation.OriginalRole,
		}
	}
	if view.Mentoria.Permissions == nil {
		view.Mentoria.Permissions = []string{}
	}
	return view
}

// ValidateTokenResponse is the body of POST /auth/validar.
type ValidateTokenResponse struct {
	Sucesso  bool              `json:"sucesso"`
	Valido   bool              `json:"valido"`
	Usuario  *TokenPayloadView `json:"usuario,omitempty"`
	Mensagem string            `json:"mensagem,omitempty"`
}

// ImpersonationResponse carries the token issued by impersonation endpoints.
type ImpersonationResponse struct {
	Sucesso  bool     `json:"sucesso"`
	Mensagem string   `json:"mensagem"`
	Token    string   `json:"token"`
	Usuario  UserView `json:"usuario"`
}

// HealthCheckResponse is the body of GET /auth/teste.
type HealthCheckResponse struct {
	Sucesso   bool      `json:"sucesso"`
	Mensagem  string    `json:"mensagem"`
	Timestamp time.Time `json:"timestamp"`
	Versao    string    `json:"versao"`
}

// UserResponse wraps a single user with a message.
type UserResponse struct {
	Sucesso  bool     `json:"sucesso"`
	Mensagem string   `json:"mensagem"`
	Usuario  UserView `json:"usuario"`
}
