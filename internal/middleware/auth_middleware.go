// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	"sparkhub-service/internal/pkg/jwt"
	"sparkhub-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
}

func NewAuthMiddleware(verifier *jwt.Verifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
	}
}

// Auth validates the staff JWT minted by the identity provider and puts the
// staff identity into the request context for audit logging.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		c.Set("staff_id", claims.StaffID)
		c.Set("staff_name", claims.FullName)
		c.Set("role", claims.Role)
		c.Set("branch", claims.Branch)

		c.Next()
	}
}

// RequireRole requires the staff member to hold one of the given roles.
// MUST be used after Auth()
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}
		response.Error(c, http.StatusForbidden, "insufficient permissions", nil, map[string]interface{}{
			"required_roles": roles,
			"role":           role,
		})
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
