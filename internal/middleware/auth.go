package middleware

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sis-mentoria-api/internal/models"
	"github.com/noah-isme/sis-mentoria-api/internal/service"
	appErrors "github.com/noah-isme/sis-mentoria-api/pkg/errors"
	"github.com/noah-isme/sis-mentoria-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated *models.Identity.
const ContextUserKey = "currentUser"

// TokenVerifier decodes session tokens and re-checks the account when asked.
type TokenVerifier interface {
	VerifyToken(token string) (*models.ClaimSet, error)
	EnsureActive(ctx context.Context, userID int64) error
}

var roleAudience = map[string]string{
	models.RoleAdministrador: "administradores",
	models.RoleAluno:         "alunos",
}

// Authenticate requires a session token in the Authorization header, raw or with the
// Bearer scheme. With checkActive the user record is re-read on every request.
func Authenticate(verifier TokenVerifier, checkActive bool, metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			metrics.RecordTokenRejection(appErrors.ErrTokenMissing.Code)
			response.Abort(c, appErrors.ErrTokenMissing)
			return
		}

		claims, err := verifier.VerifyToken(token)
		if err != nil {
			metrics.RecordTokenRejection(appErrors.FromError(err).Code)
			response.Abort(c, err)
			return
		}

		if checkActive {
			if err := verifier.EnsureActive(c.Request.Context(), claims.UserID); err != nil {
				metrics.RecordTokenRejection(appErrors.FromError(err).Code)
				response.Abort(c, err)
				return
			}
		}

		c.Set(ContextUserKey, models.NewIdentity(claims))
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return header
}

// CurrentIdentity returns the identity attached by Authenticate.
func CurrentIdentity(c *gin.Context) (*models.Identity, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	identity, ok := value.(*models.Identity)
	return identity, ok && identity != nil
}

// RequireRole admits callers whose effective role is role.
func RequireRole(role string) gin.HandlerFunc {
	audience, ok := roleAudience[role]
	if !ok {
		audience = role
	}
	denied := appErrors.Clone(appErrors.ErrForbidden, "Acesso permitido apenas para "+audience)

	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if identity.EffectiveRole != role {
			response.Abort(c, denied)
			return
		}
		c.Next()
	}
}

// RequireOwnerOrRole admits callers holding role or whose user id equals the numeric
// route parameter param.
func RequireOwnerOrRole(param, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if identity.EffectiveRole == role {
			c.Next()
			return
		}
		if id, err := strconv.ParseInt(c.Param(param), 10, 64); err == nil && id == identity.UserID {
			c.Next()
			return
		}
		response.Abort(c, appErrors.ErrForbidden)
	}
}

// RequirePermission admits callers whose token role grants perm.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			response.Abort(c, appErrors.ErrUnauthorized)
			return
		}
		if !identity.HasPermission(perm) {
			response.Abort(c, appErrors.ErrForbidden)
			return
		}
		c.Next()
	}
}
