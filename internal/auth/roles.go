package auth

import (
	"sync"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
)

// Permission names granted to roles.
const (
	PermReadAll          = "read:all"
	PermWriteAll         = "write:all"
	PermImpersonateAluno = "impersonate:aluno"
	PermReadOwnProfile   = "read:own_profile"
	PermWriteOwnProfile  = "write:own_profile"
)

var permissionTable = map[string][]string{
	models.RoleAdministrador: {models.RoleAdministrador, PermReadAll, PermWriteAll, PermImpersonateAluno},
	models.RoleAluno:         {models.RoleAluno, PermReadOwnProfile, PermWriteOwnProfile},
}

// RoleKind tells a role present in the permission table apart from one that is not.
type RoleKind int

const (
	RoleKnown RoleKind = iota
	RoleUnknown
)

func (k RoleKind) String() string {
	if k == RoleKnown {
		return "known"
	}
	return "unknown"
}

// RoleResolution is the outcome of a permission lookup.
type RoleResolution struct {
	Kind        RoleKind
	Name        string
	Permissions []string
}

// PermissionsFor maps a role name to its permissions. Unknown roles get none.
func PermissionsFor(role string) RoleResolution {
	perms, ok := permissionTable[role]
	if !ok {
		return RoleResolution{Kind: RoleUnknown, Name: role, Permissions: []string{}}
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return RoleResolution{Kind: RoleKnown, Name: role, Permissions: out}
}

// RoleRegistry indexes grupo_usuario rows by id and name.
type RoleRegistry struct {
	mu     sync.RWMutex
	byID   map[int64]models.Group
	byName map[string]models.Group
}

// NewRoleRegistry builds a registry from the stored groups.
func NewRoleRegistry(groups []models.Group) *RoleRegistry {
	r := &RoleRegistry{}
	r.Replace(groups)
	return r
}

// Replace swaps the indexed groups.
func (r *RoleRegistry) Replace(groups []models.Group) {
	byID := make(map[int64]models.Group, len(groups))
	byName := make(map[string]models.Group, len(groups))
	for _, g := range groups {
		byID[g.ID] = g
		byName[g.Name] = g
	}

	r.mu.Lock()
	r.byID, r.byName = byID, byName
	r.mu.Unlock()
}

// ResolveRole returns the role name of a group id.
func (r *RoleRegistry) ResolveRole(groupID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[groupID]
	if !ok {
		return "", appErrors.ErrGroupNotFound
	}
	return g.Name, nil
}

// GroupByName looks a group up by role name.
func (r *RoleRegistry) GroupByName(name string) (models.Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byName[name]
	return g, ok
}

// Groups lists the indexed groups.
func (r *RoleRegistry) Groups() []models.Group {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Group, 0, len(r.byID))
	for _, g := range r.byID {
		out = append(out, g)
	}
	return out
}
