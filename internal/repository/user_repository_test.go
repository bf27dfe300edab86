package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

var userColumns = []string{"idusuario", "nome", "cpf", "login", "senha", "grupo", "situacao", "ultimo_acesso", "data_senha_alterada", "data_senha_expirada", "login_secundario", "grupo_nome", "grupo_descricao"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestFindActiveByLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userColumns).
		AddRow(42, "Ana Lima", "123.456.789-00", "ana@example.com", "$2a$hash", 2, true, now, nil, nil, nil, "aluno", "Alunos em mentoria")
	mock.ExpectQuery(regexp.QuoteMeta("FROM usuario u JOIN grupo_usuario g ON g.idgrupo = u.grupo WHERE LOWER(u.login) = LOWER($1) AND u.situacao = TRUE LIMIT 1")).
		WithArgs("ana@example.com").
		WillReturnRows(rows)

	user, err := repo.FindActiveByLogin(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(42), user.ID)
	assert.Equal(t, "aluno", user.GroupName)
	assert.Equal(t, int64(2), user.Group().ID)
	require.NotNil(t, user.CPF)
	assert.Equal(t, "123.456.789-00", *user.CPF)
	assert.True(t, user.HasPassword())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByLoginNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(u.login) = LOWER($1) AND u.situacao = TRUE")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindActiveByLogin(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsByLogin(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM usuario WHERE LOWER(login) = LOWER($1))")).
		WithArgs("ana").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByLogin(context.Background(), "ana")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	hash := "$2a$hash"
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO usuario (nome, cpf, login, senha, grupo, situacao, data_senha_alterada) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING idusuario")).
		WithArgs("Ana", nil, "ana", hash, int64(2), true, nil).
		WillReturnRows(sqlmock.NewRows([]string{"idusuario"}).AddRow(7))

	user := &models.User{Nome: "Ana", Login: "ana", PasswordHash: &hash, GroupID: 2, Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.Equal(t, int64(7), user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO usuario").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "usuario_login_key"})

	err := repo.Create(context.Background(), &models.User{Nome: "Ana", Login: "ana", GroupID: 2, Active: true})
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "usuario_login_key")
}

func TestSetActiveMissingUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE usuario SET situacao = $2 WHERE idusuario = $1")).
		WithArgs(int64(99), false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), 99, false)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE usuario SET senha = $2, data_senha_alterada = $3 WHERE idusuario = $1")).
		WithArgs(int64(3), "digest", now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), 3, "digest", now))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlunos(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	groupID := int64(2)
	active := true
	now := time.Now()
	listRows := sqlmock.NewRows([]string{"idusuario", "nome", "login", "cpf", "situacao", "ultimo_acesso", "email", "telefone", "status_cadastro", "status_pagamento", "data_criacao"}).
		AddRow(1, "Ana", "ana@example.com", nil, true, nil, "ana@example.com", nil, "PRE_CADASTRO", "PENDENTE", now).
		AddRow(2, "Bruno", "bruno", nil, true, now, nil, nil, nil, nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("FROM usuario u LEFT JOIN aluno_info ai ON ai.idusuario = u.idusuario WHERE 1=1 AND u.grupo = $1 AND u.situacao = $2 AND (LOWER(u.nome) LIKE $3 ESCAPE '\\' OR LOWER(u.login) LIKE $3 ESCAPE '\\' OR u.cpf LIKE $3 ESCAPE '\\') ORDER BY u.nome ASC, u.idusuario ASC LIMIT 10 OFFSET 10")).
		WithArgs(groupID, true, "%an%").
		WillReturnRows(listRows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM usuario u LEFT JOIN aluno_info ai")).
		WithArgs(groupID, true, "%an%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	alunos, total, err := repo.ListAlunos(context.Background(), models.UserFilter{GroupID: &groupID, Active: &active, Search: "AN", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, alunos, 2)
	assert.Equal(t, 12, total)
	require.NotNil(t, alunos[0].RegistrationState)
	assert.Equal(t, models.RegistrationPre, *alunos[0].RegistrationState)
	assert.Nil(t, alunos[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAlunosEscapesLikeWildcards(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT u.idusuario")).
		WithArgs(`%50\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows([]string{"idusuario"}))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(`%50\%\_a\\b%`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	alunos, total, err := repo.ListAlunos(context.Background(), models.UserFilter{Search: `50%_A\b`})
	require.NoError(t, err)
	assert.Empty(t, alunos)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNormalisePage(t *testing.T) {
	page, size := NormalisePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	_, size = NormalisePage(1, 500)
	assert.Equal(t, 20, size)

	_, size = NormalisePage(1, -1)
	assert.Equal(t, MaxExportRows, size)
}
