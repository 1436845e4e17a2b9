package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/http/middlewares"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
	"github.com/mohamedhany/eshop-api/internal/security"
)

// AccountUsers is the slice of the users repo the self-service account
// endpoints need.
type AccountUsers interface {
	UpdateProfile(ctx context.Context, id string, name, email, phone *string) (user.User, error)
	UpdatePassword(ctx context.Context, id, password string) (user.User, error)
	Deactivate(ctx context.Context, id string) error
}

type AccountHandler struct {
	users  AccountUsers
	tokens TokenIssuer
}

func NewAccountHandler(users AccountUsers, tokens TokenIssuer) *AccountHandler {
	return &AccountHandler{users: users, tokens: tokens}
}

// GetMe returns the authenticated user the Protect middleware resolved.
func (h *AccountHandler) GetMe(ctx *gin.Context) {
	u, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		Fail(ctx, apperror.Unauthorized("You are not login, Please login to get access this route"))
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

// UpdateMe changes name, email, or phone. Absent fields keep their
// current value; password changes go through the dedicated endpoints.
func (h *AccountHandler) UpdateMe(ctx *gin.Context) {
	u, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		Fail(ctx, apperror.Unauthorized("You are not login, Please login to get access this route"))
		return
	}

	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	updated, err := h.users.UpdateProfile(
		ctx.Request.Context(),
		u.ID,
		optionalString(body, "name"),
		optionalString(body, "email"),
		optionalString(body, "phone"),
	)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			Fail(ctx, apperror.BadRequest("E-mail already in use"))
			return
		}

		Fail(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

// DeleteMe deactivates the account rather than deleting the row.
func (h *AccountHandler) DeleteMe(ctx *gin.Context) {
	u, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		Fail(ctx, apperror.Unauthorized("You are not login, Please login to get access this route"))
		return
	}

	if err := h.users.Deactivate(ctx.Request.Context(), u.ID); err != nil {
		Fail(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// ChangeMyPassword rotates the caller's password and issues a fresh
// token, since the rotation invalidates the one used on this request.
func (h *AccountHandler) ChangeMyPassword(ctx *gin.Context) {
	u, ok := middlewares.PrincipalFromContext(ctx)

	if !ok {
		Fail(ctx, apperror.Unauthorized("You are not login, Please login to get access this route"))
		return
	}

	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	if err := security.CheckPassword(u.PasswordHash, stringField(body, "currentPassword")); err != nil {
		Fail(ctx, apperror.BadRequest("Incorrect current password"))
		return
	}

	updated, err := h.users.UpdatePassword(ctx.Request.Context(), u.ID, stringField(body, "password"))

	if err != nil {
		Fail(ctx, err)
		return
	}

	token, err := h.tokens.CreateToken(updated.ID)

	if err != nil {
		Fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": updated, "token": token})
}

// ChangeUserPassword is the admin variant: rotate any user's password
// by id. No token is issued for the caller.
func (h *AccountHandler) ChangeUserPassword(ctx *gin.Context) {
	id := ctx.Param("id")

	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	updated, err := h.users.UpdatePassword(ctx.Request.Context(), id, stringField(body, "password"))

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			Fail(ctx, apperror.NoDocument(id))
			return
		}

		Fail(ctx, err)
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func optionalString(body map[string]any, key string) *string {
	v, ok := body[key]

	if !ok {
		return nil
	}

	s, ok := v.(string)

	if !ok {
		return nil
	}

	return &s
}
