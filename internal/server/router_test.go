package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sis-mentoria-api/internal/auth"
	"github.com/noah-isme/sis-mentoria-api/internal/handler"
	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/repository"
	"github.com/noah-isme/sis-mentoria-api/internal/service"
	"github.com/noah-isme/sis-mentoria-api/pkg/config"
	"github.com/noah-isme/sis-mentoria-api/pkg/ratelimit"
)

var userColumns = []string{"idusuario", "nome", "cpf", "login", "senha", "grupo", "situacao", "ultimo_acesso", "data_senha_alterada", "data_senha_expirada", "login_secundario", "grupo_nome", "grupo_descricao"}

type fixture struct {
	router *gin.Engine
	mock   sqlmock.Sqlmock
	codec  auth.Codec
}

func newFixture(t *testing.T, rateLimit int) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	raw, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { raw.Close() })
	db := sqlx.NewDb(raw, "sqlmock")

	roles := auth.NewRoleRegistry([]models.Group{{ID: 1, Name: models.RoleAdministrador}, {ID: 2, Name: models.RoleAluno}})
	users := repository.NewUserRepository(db)
	infos := repository.NewAlunoInfoRepository(db)
	tx := repository.NewTxManager(db)
	metrics := service.NewMetricsService()
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	codec := auth.NewLegacyCodec(auth.DefaultValidity)

	authSvc := service.NewAuthService(users, tx, roles, hasher, codec, metrics, nil, nil)
	alunoSvc := service.NewAlunoService(users, infos, tx, roles, hasher, metrics, nil, nil)
	userSvc := service.NewUserService(users, infos, roles, nil)

	limiter := ratelimit.NewMemoryLimiter(ratelimit.Config{Window: time.Minute, Max: rateLimit})
	t.Cleanup(limiter.Stop)

	router := NewRouter(Options{
		Env:             config.EnvTest,
		APIPrefix:       "/api",
		RateLimitWindow: 15 * time.Minute,
		Metrics:         metrics,
		Limiter:         limiter,
		Verifier:        authSvc,
		Auth:            handler.NewAuthHandler(authSvc),
		Alunos:          handler.NewAlunoHandler(alunoSvc),
		Users:           handler.NewUserHandler(userSvc),
		Observability:   handler.NewMetricsHandler(metrics, nil),
	})
	return &fixture{router: router, mock: mock, codec: codec}
}

func (f *fixture) token(t *testing.T, id int64, role string) string {
	t.Helper()
	token, err := f.codec.Encode(models.ClaimSet{UserID: id, Login: "user", GroupID: 2, Role: role})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	msg, _ := body["mensagem"].(string)
	return msg
}

func TestMeWithoutTokenIsRejected(t *testing.T) {
	f := newFixture(t, 10)

	rec := f.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token de acesso não fornecido", message(t, rec))
}

func TestUnknownRoute(t *testing.T) {
	f := newFixture(t, 10)

	rec := f.do(http.MethodGet, "/api/nada", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Rota /api/nada não encontrada", message(t, rec))
}

func TestLoginThenMe(t *testing.T) {
	f := newFixture(t, 10)
	digest, err := bcrypt.GenerateFromPassword([]byte("segredo1"), bcrypt.MinCost)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(u.login) = LOWER($1) AND u.situacao = TRUE")).
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "Maria", nil, "maria", string(digest), 2, true, nil, nil, nil, nil, "aluno", nil))
	f.mock.ExpectExec(regexp.QuoteMeta("UPDATE usuario SET ultimo_acesso = $2 WHERE idusuario = $1")).
		WithArgs(42, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	f.mock.ExpectCommit()

	rec := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": " Maria ", "senha": "segredo1", "grupo": "aluno"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var login struct {
		Token string `json:"token"`
		Grupo string `json:"grupo"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, "aluno", login.Grupo)

	f.mock.ExpectQuery(regexp.QuoteMeta("WHERE u.idusuario = $1 AND u.situacao = TRUE")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "Maria", nil, "maria", string(digest), 2, true, time.Now(), nil, nil, nil, "aluno", nil))

	rec = f.do(http.MethodGet, "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"permissoes":["aluno","read:own_profile","write:own_profile"]`)
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestWrongPasswordRollsBack(t *testing.T) {
	f := newFixture(t, 10)
	digest, err := bcrypt.GenerateFromPassword([]byte("segredo1"), bcrypt.MinCost)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectQuery(regexp.QuoteMeta("WHERE LOWER(u.login) = LOWER($1)")).
		WithArgs("maria").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "Maria", nil, "maria", string(digest), 2, true, nil, nil, nil, nil, "aluno", nil))
	f.mock.ExpectRollback()

	rec := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "maria", "senha": "errada99"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Usuário ou senha inválidos", message(t, rec))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestOwnerOrAdministradorOnUserSummary(t *testing.T) {
	f := newFixture(t, 10)
	student := f.token(t, 42, models.RoleAluno)

	f.mock.ExpectQuery(regexp.QuoteMeta("WHERE u.idusuario = $1 LIMIT 1")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(42, "Maria", nil, "maria", nil, 2, true, nil, nil, nil, nil, "aluno", nil))
	f.mock.ExpectQuery(regexp.QuoteMeta("FROM aluno_info WHERE idusuario = $1")).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows([]string{"idalunoinfo"}))

	rec := f.do(http.MethodGet, "/api/auth/usuarios/42", student, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(http.MethodGet, "/api/auth/usuarios/43", student, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acesso não autorizado a este recurso", message(t, rec))
	assert.NoError(t, f.mock.ExpectationsWereMet())
}

func TestAdministradorRoutes(t *testing.T) {
	f := newFixture(t, 10)

	rec := f.do(http.MethodGet, "/api/auth/alunos", f.token(t, 42, models.RoleAluno), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Acesso permitido apenas para administradores", message(t, rec))

	rec = f.do(http.MethodGet, "/api/auth/metricas", f.token(t, 1, models.RoleAdministrador), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/personificar/7", f.token(t, 42, models.RoleAluno), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPublicCredentialRoutesAreRateLimited(t *testing.T) {
	f := newFixture(t, 1)

	rec := f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "ab"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/auth/login", "", map[string]string{"login": "ab"})
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Equal(t, "Muitas tentativas. Tente novamente em 15 minutos.", message(t, rec))

	rec = f.do(http.MethodGet, "/api/auth/teste", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
