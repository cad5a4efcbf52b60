package middleware

import (
	"github.com/gin-gonic/gin"

	"inkhub/internal/core/apperror"
	appctx "inkhub/internal/core/context"
	"inkhub/internal/domain/entity"
)

// RequireRole middleware checks that the authenticated user has one of the
// given roles. Admins pass every check.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		if user.Role == entity.RoleAdmin {
			c.Next()
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}

		_ = c.Error(
			apperror.NewForbidden("insufficient role").
				WithDetail("role", user.Role),
		)
		c.Abort()
	}
}

// RequireAdmin restricts a route to admin accounts.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole()
}
