// README: Firebase ID-token auth middleware; resolves the acting user and role.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taxiboard/internal/infra"
	"taxiboard/internal/types"
)

const actorKey = "actor"

// Auth verifies the Bearer token and stores the resulting Actor in the gin
// context. The role comes from the "role" custom claim set by the admin
// when the account is provisioned.
func Auth(verifier infra.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		token, err := verifier.VerifyIDToken(c.Request.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		role, _ := token.Claims["role"].(string)
		switch types.Role(role) {
		case types.RoleAdmin, types.RoleSecretary, types.RoleDriver:
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "unrecognized role"})
			return
		}
		c.Set(actorKey, types.Actor{ID: types.ID(token.UID), Role: types.Role(role)})
		c.Next()
	}
}

// Actor returns the authenticated actor placed by Auth.
func Actor(c *gin.Context) (types.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return types.Actor{}, false
	}
	a, ok := v.(types.Actor)
	return a, ok
}
