package middleware

import (
	"github.com/atwlabs/novel-workspace/internal/models"
	"github.com/atwlabs/novel-workspace/internal/session"
	"github.com/atwlabs/novel-workspace/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	ContextUserID   = "user_id"
	ContextIdentity = "identity"
	ContextRole     = "role"
)

// IdentitySource maps an Authorization header to an identity.
type IdentitySource interface {
	Identify(authHeader string) (session.Identity, error)
}

// Identify attaches the caller's identity to the context. Requests without a
// token continue as anonymous; a token that fails verification is rejected.
func Identify(source IdentitySource) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := source.Identify(c.GetHeader("Authorization"))
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(ContextIdentity, identity)
		if !identity.IsAnonymous() {
			c.Set(ContextUserID, identity.UserID)
			c.Set(ContextRole, identity.Role)
		}
		c.Next()
	}
}

// AdminRequired rejects callers whose identity is not an admin.
func AdminRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := GetIdentity(c)
		if identity.IsAnonymous() {
			response.Unauthorized(c, "authorization required")
			c.Abort()
			return
		}
		if identity.Role != models.RoleAdmin {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity set by Identify, or Anonymous.
func GetIdentity(c *gin.Context) session.Identity {
	if v, exists := c.Get(ContextIdentity); exists {
		if identity, ok := v.(session.Identity); ok {
			return identity
		}
	}
	return session.Anonymous
}

func GetUserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}
