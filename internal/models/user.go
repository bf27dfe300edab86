package models

import "time"

// Role names stored in grupo_usuario.nome.
const (
	RoleAdministrador = "administrador"
	RoleAluno         = "aluno"
)

// User is a row of the usuario table.
type User struct {
	ID                int64      `db:"idusuario" json:"idusuario"`
	Nome              string     `db:"nome" json:"nome"`
	CPF               *string    `db:"cpf" json:"cpf,omitempty"`
	Login             string     `db:"login" json:"login"`
	PasswordHash      *string    `db:"senha" json:"-"`
	GroupID           int64      `db:"grupo" json:"grupo"`
	Active            bool       `db:"situacao" json:"situacao"`
	LastAccess        *time.Time `db:"ultimo_acesso" json:"ultimo_acesso,omitempty"`
	PasswordChangedAt *time.Time `db:"data_senha_alterada" json:"-"`
	PasswordExpiresAt *time.Time `db:"data_senha_expirada" json:"-"`
	SecondaryLogin    *string    `db:"login_secundario" json:"-"`
}

// HasPassword reports whether a digest is stored.
func (u *User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}

// UserWithGroup is a user joined with its group row.
type UserWithGroup struct {
	User
	GroupName        string  `db:"grupo_nome"`
	GroupDescription *string `db:"grupo_descricao"`
}

// Group returns the joined group.
func (u *UserWithGroup) Group() Group {
	return Group{ID: u.GroupID, Name: u.GroupName, Description: u.GroupDescription}
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	GroupID  *int64
	Active   *bool
	Search   string
	Page     int
	PageSize int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"pagina"`
	PageSize   int `json:"limite"`
	TotalCount int `json:"total"`
	TotalPages int `json:"totalPaginas"`
}

// NewPagination derives the page count from the total.
func NewPagination(page, pageSize, total int) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return Pagination{Page: page, PageSize: pageSize, TotalCount: total, TotalPages: pages}
}
