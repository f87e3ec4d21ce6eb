// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetStaffID gets the authenticated staff ID from context
func GetStaffID(c *gin.Context) (int64, bool) {
	v, exists := c.Get("staff_id")
	if !exists {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}

// MustGetStaffID gets the staff ID from context or panics
func MustGetStaffID(c *gin.Context) int64 {
	id, exists := GetStaffID(c)
	if !exists {
		panic("staff_id not found in context")
	}
	return id
}

// GetBranch gets the staff member's branch from context
func GetBranch(c *gin.Context) string {
	return c.GetString("branch")
}

// IsAuthenticated checks if request is authenticated
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("staff_id")
	return exists
}
