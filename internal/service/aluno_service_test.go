package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/dto"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

type mockAlunoUserRepo struct {
	logins    map[string]bool
	cpfs      map[string]bool
	created   []*models.User
	createErr error
}

func (m *mockAlunoUserRepo) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	return m.logins[login], nil
}

func (m *mockAlunoUserRepo) ExistsByCPF(ctx context.Context, cpf string) (bool, error) {
	return m.cpfs[cpf], nil
}

func (m *mockAlunoUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = int64(500 + len(m.created))
	m.created = append(m.created, user)
	return nil
}

type mockAlunoInfoRepo struct {
	created   []*models.AlunoInfo
	createErr error
}

func (m *mockAlunoInfoRepo) Create(ctx context.Context, info *models.AlunoInfo) error {
	if m.createErr != nil {
		return m.createErr
	}
	info.ID = int64(len(m.created) + 1)
	info.CreatedAt = fixedNow
	m.created = append(m.created, info)
	return nil
}

func newTestAlunoService(users *mockAlunoUserRepo, infos *mockAlunoInfoRepo) (*AlunoService, *mockTx) {
	tx := &mockTx{}
	svc := NewAlunoService(users, infos, tx, auth.NewRoleRegistry(testGroups), auth.NewBcryptHasher(bcrypt.MinCost), nil, nil, nil)
	return svc, tx
}

func TestAlunoServiceCreate(t *testing.T) {
	users := &mockAlunoUserRepo{}
	infos := &mockAlunoInfoRepo{}
	svc, tx := newTestAlunoService(users, infos)

	created, err := svc.Create(context.Background(), dto.CreateAlunoRequest{
		Nome:  "  Ana   Lima ",
		Email: "Ana@Example.com",
		CPF:   "123.456.789-09",
		Senha: "segredo1",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, tx.calls)

	require.Len(t, users.created, 1)
	user := users.created[0]
	assert.Equal(t, "Ana Lima", user.Nome)
	assert.Equal(t, "ana@example.com", user.Login)
	assert.Equal(t, int64(2), user.GroupID)
	require.NotNil(t, user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte("segredo1")))

	require.Len(t, infos.created, 1)
	info := infos.created[0]
	assert.Equal(t, user.ID, info.UserID)
	assert.Equal(t, models.RegistrationPre, info.RegistrationState)
	assert.Equal(t, models.PaymentPending, info.PaymentState)
	require.NotNil(t, info.ExternalReference)
	assert.Len(t, *info.ExternalReference, 36)

	require.NotNil(t, user.CPF)
	assert.Equal(t, "12345678909", *user.CPF)
	require.NotNil(t, info.CPF)
	assert.Equal(t, "12345678909", *info.CPF)

	assert.Equal(t, "aluno", created.User.Group.Name)
	assert.Equal(t, "ana@example.com", created.User.Login)
}

func TestAlunoServiceCreateWithoutPassword(t *testing.T) {
	users := &mockAlunoUserRepo{}
	svc, _ := newTestAlunoService(users, &mockAlunoInfoRepo{})

	_, err := svc.Create(context.Background(), dto.CreateAlunoRequest{Nome: "Bruno", Email: "bruno@example.com", CPF: "12345678909"})
	require.NoError(t, err)
	require.Len(t, users.created, 1)
	assert.Nil(t, users.created[0].PasswordHash)
	assert.Nil(t, users.created[0].PasswordChangedAt)
}

func TestAlunoServiceCreateRejections(t *testing.T) {
	tests := []struct {
		name    string
		users   *mockAlunoUserRepo
		infos   *mockAlunoInfoRepo
		req     dto.CreateAlunoRequest
		message string
	}{
		{
			name:    "missing fields",
			users:   &mockAlunoUserRepo{},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com"},
			message: "Preencha nome, email e CPF.",
		},
		{
			name:    "malformed cpf",
			users:   &mockAlunoUserRepo{},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "123"},
			message: "Dados inválidos: CPF deve estar no formato 000.000.000-00 ou apenas números",
		},
		{
			name:    "duplicate email",
			users:   &mockAlunoUserRepo{logins: map[string]bool{"ana@example.com": true}},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "12345678909"},
			message: "Já existe um usuário com este email.",
		},
		{
			name:    "duplicate cpf",
			users:   &mockAlunoUserRepo{cpfs: map[string]bool{"12345678909": true}},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "12345678909"},
			message: "Já existe um usuário com este CPF.",
		},
		{
			name:    "duplicate cpf in other format",
			users:   &mockAlunoUserRepo{cpfs: map[string]bool{"12345678909": true}},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "123.456.789-09"},
			message: "Já existe um usuário com este CPF.",
		},
		{
			name:    "duplicate email with other case",
			users:   &mockAlunoUserRepo{logins: map[string]bool{"ana@example.com": true}},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: " ANA@Example.com", CPF: "12345678909"},
			message: "Já existe um usuário com este email.",
		},
		{
			name:    "password over bcrypt limit",
			users:   &mockAlunoUserRepo{},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "12345678909", Senha: strings.Repeat("ç", 37)},
			message: "Dados inválidos: Senha deve ter no máximo 72 bytes",
		},
		{
			name:    "unique race",
			users:   &mockAlunoUserRepo{},
			infos:   &mockAlunoInfoRepo{createErr: fmt.Errorf("create aluno info: %w (aluno_info_idusuario_key)", repository.ErrDuplicate)},
			req:     dto.CreateAlunoRequest{Nome: "Ana", Email: "ana@example.com", CPF: "12345678909"},
			message: "Já existe um aluno cadastrado com este email ou CPF.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			infos := tc.infos
			if infos == nil {
				infos = &mockAlunoInfoRepo{}
			}
			svc, _ := newTestAlunoService(tc.users, infos)

			_, err := svc.Create(context.Background(), tc.req)
			require.Error(t, err)
			appErr := appErrors.FromError(err)
			assert.Equal(t, http.StatusBadRequest, appErr.Status)
			assert.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestAlunoServiceCreatedAlunoCanLogin(t *testing.T) {
	repo := newMockAuthRepo()
	alunos := NewAlunoService(repo, &mockAlunoInfoRepo{}, &mockTx{}, auth.NewRoleRegistry(testGroups), auth.NewBcryptHasher(bcrypt.MinCost), nil, nil, nil)
	authSvc, _, _ := newTestAuthService(repo)

	_, err := alunos.Create(context.Background(), dto.CreateAlunoRequest{Nome: "Ana", Email: "Ana@X.com", CPF: "123.456.789-09", Senha: "senha123"})
	require.NoError(t, err)

	res, err := authSvc.Login(context.Background(), dto.LoginRequest{Login: "Ana@X.com", Senha: "senha123"})
	require.NoError(t, err)
	assert.Equal(t, "ana@x.com", res.User.Login)

	_, err = alunos.Create(context.Background(), dto.CreateAlunoRequest{Nome: "Ana", Email: "outra@x.com", CPF: "12345678909"})
	require.Error(t, err)
	assert.Equal(t, "Já existe um usuário com este CPF.", appErrors.FromError(err).Message)
}
