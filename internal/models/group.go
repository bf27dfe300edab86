package models

// Group is a row of grupo_usuario.
type Group struct {
	ID          int64   `db:"idgrupo" json:"idgrupo"`
	Name        string  `db:"nome" json:"nome"`
	Description *string `db:"descricao" json:"descricao,omitempty"`
}
