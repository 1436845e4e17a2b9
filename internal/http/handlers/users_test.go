package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/http/handlers"
	"github.com/mohamedhany/eshop-api/internal/http/middlewares"
	"github.com/mohamedhany/eshop-api/internal/observability"
	"github.com/mohamedhany/eshop-api/internal/security"
)

type fakeAccountUsers struct {
	updateProfileFn  func(ctx context.Context, id string, name, email, phone *string) (user.User, error)
	updatePasswordFn func(ctx context.Context, id, password string) (user.User, error)
	deactivateFn     func(ctx context.Context, id string) error
}

func (f *fakeAccountUsers) UpdateProfile(ctx context.Context, id string, name, email, phone *string) (user.User, error) {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, id, name, email, phone)
	}
	return user.User{ID: id}, nil
}

func (f *fakeAccountUsers) UpdatePassword(ctx context.Context, id, password string) (user.User, error) {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, password)
	}
	return user.User{ID: id}, nil
}

func (f *fakeAccountUsers) Deactivate(ctx context.Context, id string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return nil
}

// principalInjector stands in for Protect in these tests.
func principalInjector(u user.User) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(middlewares.CtxPrincipal, u)
		ctx.Next()
	}
}

func accountRouter(users handlers.AccountUsers, principal user.User, mount func(r *gin.Engine, h *handlers.AccountHandler)) *gin.Engine {
	h := handlers.NewAccountHandler(users, &fakeTokens{})

	r := gin.New()
	r.Use(middlewares.ErrorResponder("prod", observability.NewLogger("prod")))
	r.Use(principalInjector(principal))

	mount(r, h)

	return r
}

func TestGetMe(t *testing.T) {
	me := user.User{ID: "u-1", Name: "Ann", Email: "ann@shop.io", Role: user.RoleUser}

	r := accountRouter(&fakeAccountUsers{}, me, func(r *gin.Engine, h *handlers.AccountHandler) {
		r.GET("/users/getMe", h.GetMe)
	})

	w := doJSON(t, r, http.MethodGet, "/users/getMe", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data user.User `json:"data"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Data.ID != "u-1" || resp.Data.Email != "ann@shop.io" {
		t.Fatalf("data = %+v", resp.Data)
	}
}

func TestUpdateMePartialFields(t *testing.T) {
	var gotName, gotEmail, gotPhone *string

	users := &fakeAccountUsers{
		updateProfileFn: func(ctx context.Context, id string, name, email, phone *string) (user.User, error) {
			gotName, gotEmail, gotPhone = name, email, phone
			return user.User{ID: id}, nil
		},
	}

	r := accountRouter(users, user.User{ID: "u-1"}, func(r *gin.Engine, h *handlers.AccountHandler) {
		r.PUT("/users/updateMe", h.UpdateMe)
	})

	w := doJSON(t, r, http.MethodPut, "/users/updateMe", `{"email":"new@shop.io"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if gotName != nil || gotPhone != nil {
		t.Fatal("absent fields must stay untouched")
	}

	if gotEmail == nil || *gotEmail != "new@shop.io" {
		t.Fatalf("email = %v", gotEmail)
	}
}

func TestDeleteMeDeactivates(t *testing.T) {
	var deactivated string

	users := &fakeAccountUsers{
		deactivateFn: func(ctx context.Context, id string) error {
			deactivated = id
			return nil
		},
	}

	r := accountRouter(users, user.User{ID: "u-1"}, func(r *gin.Engine, h *handlers.AccountHandler) {
		r.DELETE("/users/deleteMe", h.DeleteMe)
	})

	w := doJSON(t, r, http.MethodDelete, "/users/deleteMe", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	if deactivated != "u-1" {
		t.Fatalf("deactivated %q, want the caller", deactivated)
	}
}

func TestChangeMyPassword(t *testing.T) {
	hash, err := security.HashPassword("old-secret")

	if err != nil {
		t.Fatal(err)
	}

	me := user.User{ID: "u-1", PasswordHash: hash}

	mount := func(r *gin.Engine, h *handlers.AccountHandler) {
		r.PUT("/users/changeMyPassword", h.ChangeMyPassword)
	}

	t.Run("wrong_current_password", func(t *testing.T) {
		r := accountRouter(&fakeAccountUsers{}, me, mount)

		w := doJSON(t, r, http.MethodPut, "/users/changeMyPassword",
			`{"currentPassword":"wrong","password":"new-secret","passwordConfirm":"new-secret"}`)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}

		if msg := messageOf(t, w.Body.Bytes()); msg != "Incorrect current password" {
			t.Fatalf("message = %q", msg)
		}
	})

	t.Run("success_issues_fresh_token", func(t *testing.T) {
		r := accountRouter(&fakeAccountUsers{}, me, mount)

		w := doJSON(t, r, http.MethodPut, "/users/changeMyPassword",
			`{"currentPassword":"old-secret","password":"new-secret","passwordConfirm":"new-secret"}`)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
		}

		var resp struct {
			Token string `json:"token"`
		}

		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}

		if resp.Token == "" {
			t.Fatal("password change must issue a fresh token")
		}
	})
}

func TestChangeUserPasswordByAdmin(t *testing.T) {
	var changedID string

	users := &fakeAccountUsers{
		updatePasswordFn: func(ctx context.Context, id, password string) (user.User, error) {
			changedID = id
			return user.User{ID: id}, nil
		},
	}

	r := accountRouter(users, user.User{ID: "admin-1", Role: user.RoleAdmin}, func(r *gin.Engine, h *handlers.AccountHandler) {
		r.PUT("/users/changePassword/:id", h.ChangeUserPassword)
	})

	w := doJSON(t, r, http.MethodPut, "/users/changePassword/u-9", `{"password":"new-secret","passwordConfirm":"new-secret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if changedID != "u-9" {
		t.Fatalf("changed %q, want u-9", changedID)
	}
}
