package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

func seededRegistry() *RoleRegistry {
	return NewRoleRegistry([]models.Group{
		{ID: 1, Name: models.RoleAdministrador},
		{ID: 2, Name: models.RoleAluno},
	})
}

func TestResolveRole(t *testing.T) {
	r := seededRegistry()

	role, err := r.ResolveRole(2)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAluno, role)

	_, err = r.ResolveRole(99)
	assert.ErrorIs(t, err, appErrors.ErrGroupNotFound)
}

func TestGroupByName(t *testing.T) {
	r := seededRegistry()

	g, ok := r.GroupByName(models.RoleAdministrador)
	require.True(t, ok)
	assert.Equal(t, int64(1), g.ID)

	_, ok = r.GroupByName("mentor")
	assert.False(t, ok)

	r.Replace([]models.Group{{ID: 3, Name: "mentor"}})
	_, ok = r.GroupByName("mentor")
	assert.True(t, ok)
	assert.Len(t, r.Groups(), 1)
}

func TestPermissionsFor(t *testing.T) {
	admin := PermissionsFor(models.RoleAdministrador)
	assert.Equal(t, RoleKnown, admin.Kind)
	assert.Equal(t, []string{"administrador", "read:all", "write:all", "impersonate:aluno"}, admin.Permissions)

	aluno := PermissionsFor(models.RoleAluno)
	assert.Equal(t, []string{"aluno", "read:own_profile", "write:own_profile"}, aluno.Permissions)

	unknown := PermissionsFor("mentor")
	assert.Equal(t, RoleUnknown, unknown.Kind)
	assert.Equal(t, "unknown", unknown.Kind.String())
	assert.Empty(t, unknown.Permissions)

	admin.Permissions[0] = "changed"
	assert.Equal(t, "administrador", PermissionsFor(models.RoleAdministrador).Permissions[0])
}
