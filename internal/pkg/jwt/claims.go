package jwt

import (
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the staff identity minted by the external identity provider.
// The service never issues tokens itself; it only verifies them.
type Claims struct {
	StaffID  int64  `json:"staff_id"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	Branch   string `json:"branch,omitempty"`
	jwt.RegisteredClaims
}

// HasRole checks if the claims carry a specific role.
func (c *Claims) HasRole(role string) bool {
	return c.Role == role
}

// IsAdmin checks if the staff member is a branch admin.
func (c *Claims) IsAdmin() bool {
	return c.Role == "admin" || c.Role == "owner"
}

// VerifyAudience checks if the expected audience is listed in the claims.
func (c *Claims) VerifyAudience(expected string, required bool) bool {
	if len(c.Audience) == 0 {
		return !required
	}
	for _, aud := range c.Audience {
		if aud == expected {
			return true
		}
	}
	return false
}
