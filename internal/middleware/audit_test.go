package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
)

func TestAuditSkipsFailedRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.DELETE("/alunos/:id", Audit(zap.New(core), "deactivate", "aluno"), func(c *gin.Context) {
		if c.Param("id") == "404" {
			c.Status(http.StatusNotFound)
			return
		}
		c.Status(http.StatusOK)
	})

	for _, path := range []string{"/alunos/7", "/alunos/404"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, path, nil))
	}

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "deactivate", fields["action"])
	assert.Equal(t, "aluno", fields["resource"])
	assert.Equal(t, "7", fields["resource_id"])
	assert.Equal(t, "/alunos/:id", fields["path"])
	assert.NotContains(t, fields, "user_id")
}

func TestAuditIncludesIdentity(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	verifier := newStubVerifier()
	r := newAuthRouter(verifier, false, nil, Audit(zap.New(core), "view", "usuario"))

	token := verifier.token(t, models.ClaimSet{
		UserID: 2, Login: "maria", GroupID: 2, Role: models.RoleAluno,
		Impersonation: &models.Impersonation{OriginalUserID: 1, OriginalRole: models.RoleAdministrador},
	})
	rec := perform(r, "/resource/2", "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)

	entries := logs.FilterMessage("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(2), fields["user_id"])
	assert.Equal(t, models.RoleAdministrador, fields["role"])
	assert.Equal(t, int64(1), fields["original_user_id"])
}
