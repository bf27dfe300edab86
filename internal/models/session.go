package models

import "time"

// Impersonation records who is acting behind an impersonated session.
type Impersonation struct {
	OriginalUserID int64
	OriginalRole   string
}

// ClaimSet is the decoded content of a session token. Permissions are derived from
// Role on decode and never travel on the wire.
type ClaimSet struct {
	UserID        int64
	Login         string
	GroupID       int64
	Role          string
	IssuedAt      time.Time
	Impersonation *Impersonation
	Permissions   []string
}

// Impersonating reports whether the token was issued through impersonation.
func (c *ClaimSet) Impersonating() bool {
	return c.Impersonation != nil
}

// EffectiveRole is the role used for authorization: the original role while
// impersonating, the token role otherwise.
func (c *ClaimSet) EffectiveRole() string {
	if c.Impersonation != nil && c.Impersonation.OriginalRole != "" {
		return c.Impersonation.OriginalRole
	}
	return c.Role
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	UserID         int64
	Login          string
	GroupID        int64
	Role           string
	EffectiveRole  string
	Permissions    []string
	Impersonating  bool
	OriginalUserID int64
	OriginalRole   string
}

// NewIdentity flattens a claim set.
func NewIdentity(claims *ClaimSet) *Identity {
	id := &Identity{
		UserID:        claims.UserID,
		Login:         claims.Login,
		GroupID:       claims.GroupID,
		Role:          claims.Role,
		EffectiveRole: claims.EffectiveRole(),
		Permissions:   claims.Permissions,
		Impersonating: claims.Impersonating(),
	}
	if claims.Impersonation != nil {
		id.OriginalUserID = claims.Impersonation.OriginalUserID
		id.OriginalRole = claims.Impersonation.OriginalRole
	}
	return id
}

// HasPermission reports whether perm was granted to the token role.
func (i *Identity) HasPermission(perm string) bool {
	for _, p := range i.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}
