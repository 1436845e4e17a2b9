package middlewares

import (
	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
)

// AllowedTo gates a route on the principal's role. Must run after Protect.
func (m *AuthMiddleware) AllowedTo(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := PrincipalFromContext(c)

		if !ok {
			abort(c, apperror.Unauthorized("You are not login, Please login to get access this route"))
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		abort(c, apperror.Forbidden("You are not allowed to access this route"))
	}
}
