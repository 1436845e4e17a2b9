package middlewares

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
	"github.com/mohamedhany/eshop-api/internal/auth"
	"github.com/mohamedhany/eshop-api/internal/config"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.Claims, error)
}

type UserLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserLoader
}

func NewAuthMiddleware(jwt TokenVerifier, users UserLoader) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// Protect is the auth gate: bearer extraction, token verification, the
// user must still exist, and tokens issued before the last password
// change are rejected. The resolved principal lands on the context for
// PrincipalFromContext.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer") {
			abort(c, apperror.Unauthorized("You are not login, Please login to get access this route"))
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

		if raw == "" {
			abort(c, apperror.Unauthorized("You are not login, Please login to get access this route"))
			return
		}

		claims, err := m.jwt.VerifyToken(raw)

		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				abort(c, apperror.Unauthorized("Expired token, please login again.."))
				return
			}

			abort(c, apperror.Unauthorized("Invalid token, please login again.."))
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		current, err := m.users.GetByID(cctx, claims.UserID)

		if err != nil {
			abort(c, apperror.Unauthorized("The user that belong to this token does no longer exist"))
			return
		}

		if claims.IssuedAt != nil && current.ChangedPasswordAfter(claims.IssuedAt.Time) {
			abort(c, apperror.Unauthorized("User recently changed their password. Please log in again."))
			return
		}

		c.Set(CtxPrincipal, current)

		c.Next()
	}
}

// PrincipalFromContext hands the resolved user to handlers without them
// knowing the context key.
func PrincipalFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxPrincipal)

	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)

	return u, ok
}

func abort(c *gin.Context, err *apperror.Error) {
	_ = c.Error(err)
	c.Abort()
}
