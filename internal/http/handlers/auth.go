package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/notifications"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
	"github.com/mohamedhany/eshop-api/internal/security"
)

const resetCodeTTL = 10 * time.Minute

// AuthUsers is the slice of the users repo the auth flows need.
type AuthUsers interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByResetCode(ctx context.Context, codeHash string) (user.User, error)
	Create(ctx context.Context, name, email, password, role string) (user.User, error)
	SetResetCode(ctx context.Context, id, codeHash string, expires time.Time) error
	ClearResetCode(ctx context.Context, id string) error
	MarkResetVerified(ctx context.Context, id string) error
	ResetPassword(ctx context.Context, id, password string) (user.User, error)
}

type TokenIssuer interface {
	CreateToken(userID string) (string, error)
}

type AuthHandler struct {
	users  AuthUsers
	tokens TokenIssuer
	mailer notifications.Mailer
	log    *slog.Logger
}

func NewAuthHandler(users AuthUsers, tokens TokenIssuer, mailer notifications.Mailer, log *slog.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		log:    log,
	}
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	u, err := h.users.Create(
		ctx.Request.Context(),
		stringField(body, "name"),
		stringField(body, "email"),
		stringField(body, "password"),
		user.RoleUser,
	)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailTaken) {
			Fail(ctx, apperror.BadRequest("E-mail already in use"))
			return
		}

		Fail(ctx, err)
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	u, err := h.users.GetByEmail(ctx.Request.Context(), stringField(body, "email"))

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			Fail(ctx, apperror.Unauthorized("Incorrect email or password"))
			return
		}

		Fail(ctx, err)
		return
	}

	if err := security.CheckPassword(u.PasswordHash, stringField(body, "password")); err != nil {
		Fail(ctx, apperror.Unauthorized("Incorrect email or password"))
		return
	}

	h.respondWithToken(ctx, http.StatusCreated, u)
}

// ForgotPassword generates a 6-digit reset code, stores its hash with a
// short expiry, and emails the plaintext code. If the email cannot be
// sent the stored reset fields are rolled back.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	email := stringField(body, "email")

	u, err := h.users.GetByEmail(ctx.Request.Context(), email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			Fail(ctx, apperror.NotFound(fmt.Sprintf("There is no user with that email %s", email)))
			return
		}

		Fail(ctx, err)
		return
	}

	code, err := security.GenerateResetCode()

	if err != nil {
		Fail(ctx, err)
		return
	}

	expires := time.Now().Add(resetCodeTTL)

	if err := h.users.SetResetCode(ctx.Request.Context(), u.ID, security.HashResetCode(code), expires); err != nil {
		Fail(ctx, err)
		return
	}

	err = h.mailer.SendPasswordResetCode(ctx.Request.Context(), notifications.PasswordResetInput{
		Email: u.Email,
		Name:  u.Name,
		Code:  code,
	})

	if err != nil {
		h.log.ErrorContext(ctx.Request.Context(), "reset_email_failed", "err", err.Error())

		if rbErr := h.users.ClearResetCode(ctx.Request.Context(), u.ID); rbErr != nil {
			h.log.ErrorContext(ctx.Request.Context(), "reset_rollback_failed", "err", rbErr.Error())
		}

		Fail(ctx, apperror.Internal("There is an error in sending email"))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"status":  "Success",
		"message": "Reset code sent to email",
	})
}

func (h *AuthHandler) VerifyResetCode(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	codeHash := security.HashResetCode(stringField(body, "resetCode"))

	u, err := h.users.GetByResetCode(ctx.Request.Context(), codeHash)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			Fail(ctx, apperror.BadRequest("Reset code invalid or expired"))
			return
		}

		Fail(ctx, err)
		return
	}

	if err := h.users.MarkResetVerified(ctx.Request.Context(), u.ID); err != nil {
		Fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "Success"})
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	email := stringField(body, "email")

	u, err := h.users.GetByEmail(ctx.Request.Context(), email)

	if err != nil {
		if errors.Is(err, postgres.ErrUserNotFound) {
			Fail(ctx, apperror.NotFound(fmt.Sprintf("There is no user with email %s", email)))
			return
		}

		Fail(ctx, err)
		return
	}

	if u.PasswordResetVerified == nil || !*u.PasswordResetVerified {
		Fail(ctx, apperror.BadRequest("Reset code not verified"))
		return
	}

	updated, err := h.users.ResetPassword(ctx.Request.Context(), u.ID, stringField(body, "newPassword"))

	if err != nil {
		Fail(ctx, err)
		return
	}

	token, err := h.tokens.CreateToken(updated.ID)

	if err != nil {
		Fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *AuthHandler) respondWithToken(ctx *gin.Context, status int, u user.User) {
	token, err := h.tokens.CreateToken(u.ID)

	if err != nil {
		Fail(ctx, err)
		return
	}

	ctx.JSON(status, gin.H{"data": u, "token": token})
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)

	return s
}
