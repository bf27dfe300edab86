package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

const userSelect = `SELECT u.idusuario, u.nome, u.cpf, u.login, u.senha, u.grupo, u.situacao, u.ultimo_acesso, u.data_senha_alterada, u.data_senha_expirada, u.login_secundario, g.nome AS grupo_nome, g.descricao AS grupo_descricao FROM usuario u JOIN grupo_usuario g ON g.idgrupo = u.grupo`

// UserRepository provides database access for the usuario table.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindActiveByLogin returns the active user owning login, compared case-insensitively.
func (r *UserRepository) FindActiveByLogin(ctx context.Context, login string) (*models.UserWithGroup, error) {
	return r.findOne(ctx, "find active user by login", userSelect+` WHERE LOWER(u.login) = LOWER($1) AND u.situacao = TRUE LIMIT 1`, login)
}

// FindActiveByID returns an active user by identifier.
func (r *UserRepository) FindActiveByID(ctx context.Context, id int64) (*models.UserWithGroup, error) {
	return r.findOne(ctx, "find active user by id", userSelect+` WHERE u.idusuario = $1 AND u.situacao = TRUE LIMIT 1`, id)
}

// FindByID returns a user by identifier regardless of its situacao.
func (r *UserRepository) FindByID(ctx context.Context, id int64) (*models.UserWithGroup, error) {
	return r.findOne(ctx, "find user by id", userSelect+` WHERE u.idusuario = $1 LIMIT 1`, id)
}

func (r *UserRepository) findOne(ctx context.Context, op, query string, arg interface{}) (*models.UserWithGroup, error) {
	var user models.UserWithGroup
	if err := conn(ctx, r.db).GetContext(ctx, &user, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// ExistsByLogin reports whether any user, active or not, owns login in any letter case.
func (r *UserRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM usuario WHERE LOWER(login) = LOWER($1))`
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, login); err != nil {
		return false, fmt.Errorf("check login: %w", err)
	}
	return exists, nil
}

// ExistsByCPF reports whether any user owns cpf.
func (r *UserRepository) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM usuario WHERE cpf = $1)`
	var exists bool
	if err := conn(ctx, r.db).GetContext(ctx, &exists, query, cpf); err != nil {
		return false, fmt.Errorf("check cpf: %w", err)
	}
	return exists, nil
}

// Create inserts user and sets its generated identifier.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const query = `INSERT INTO usuario (nome, cpf, login, senha, grupo, situacao, data_senha_alterada) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING idusuario`
	err := conn(ctx, r.db).QueryRowxContext(ctx, query,
		user.Nome, user.CPF, user.Login, user.PasswordHash, user.GroupID, user.Active, user.PasswordChangedAt,
	).Scan(&user.ID)
	if err != nil {
		return mapConstraintError("create user", err)
	}
	return nil
}

// UpdateLastAccess stamps ultimo_acesso.
func (r *UserRepository) UpdateLastAccess(ctx context.Context, id int64, ts time.Time) error {
	const query = `UPDATE usuario SET ultimo_acesso = $2 WHERE idusuario = $1`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, id, ts); err != nil {
		return fmt.Errorf("update last access: %w", err)
	}
	return nil
}

// UpdatePassword stores a new digest and the change time.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string, changedAt time.Time) error {
	const query = `UPDATE usuario SET senha = $2, data_senha_alterada = $3 WHERE idusuario = $1`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, id, passwordHash, changedAt); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetActive flips situacao. sql.ErrNoRows is returned when the user does not exist.
func (r *UserRepository) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `UPDATE usuario SET situacao = $2 WHERE idusuario = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("set user situacao: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set user situacao: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAlunos returns users of the filtered group joined with their aluno_info, plus the total.
func (r *UserRepository) ListAlunos(ctx context.Context, filter models.UserFilter) ([]models.AlunoListItem, int, error) {
	baseQuery := `FROM usuario u LEFT JOIN aluno_info ai ON ai.idusuario = u.idusuario WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.GroupID != nil {
		conditions = append(conditions, fmt.Sprintf("u.grupo = $%d", len(args)+1))
		args = append(args, *filter.GroupID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("u.situacao = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		n := len(args) + 1
		conditions = append(conditions, fmt.Sprintf(`(LOWER(u.nome) LIKE $%d ESCAPE '\' OR LOWER(u.login) LIKE $%d ESCAPE '\' OR u.cpf LIKE $%d ESCAPE '\')`, n, n, n))
		args = append(args, "%"+likeEscaper.Replace(strings.ToLower(filter.Search))+"%")
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page, pageSize := NormalisePage(filter.Page, filter.PageSize)
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT u.idusuario, u.nome, u.login, u.cpf, u.situacao, u.ultimo_acesso, ai.email, ai.telefone, ai.status_cadastro, ai.status_pagamento, ai.data_criacao %s ORDER BY u.nome ASC, u.idusuario ASC LIMIT %d OFFSET %d", baseQuery, pageSize, offset)

	db := conn(ctx, r.db)
	var alunos []models.AlunoListItem
	if err := db.SelectContext(ctx, &alunos, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list alunos: %w", err)
	}

	var total int
	if err := db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) %s", baseQuery), args...); err != nil {
		return nil, 0, fmt.Errorf("count alunos: %w", err)
	}

	return alunos, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// NormalisePage clamps paging input. A page size of -1 asks for everything up to the
// export cap.
func NormalisePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case pageSize == -1:
		pageSize = MaxExportRows
	case pageSize <= 0 || pageSize > 100:
		pageSize = 20
	}
	return page, pageSize
}

// MaxExportRows bounds roster exports.
const MaxExportRows = 5000
