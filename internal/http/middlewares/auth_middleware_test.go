package middlewares_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mohamedhany/eshop-api/internal/auth"
	"github.com/mohamedhany/eshop-api/internal/domain/user"
	"github.com/mohamedhany/eshop-api/internal/http/middlewares"
	"github.com/mohamedhany/eshop-api/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (*auth.Claims, error)
}

func (f *fakeVerifier) VerifyToken(token string) (*auth.Claims, error) {
	return f.verifyFn(token)
}

type fakeUserLoader struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUserLoader) GetByID(ctx context.Context, id string) (user.User, error) {
	return f.getFn(ctx, id)
}

func protectedRouter(verifier middlewares.TokenVerifier, users middlewares.UserLoader, extra ...gin.HandlerFunc) *gin.Engine {
	guard := middlewares.NewAuthMiddleware(verifier, users)

	r := gin.New()
	r.Use(middlewares.ErrorResponder("prod", observability.NewLogger("prod")))

	chain := append([]gin.HandlerFunc{guard.Protect()}, extra...)
	chain = append(chain, func(ctx *gin.Context) {
		principal, _ := middlewares.PrincipalFromContext(ctx)
		ctx.JSON(http.StatusOK, gin.H{"id": principal.ID})
	})

	r.GET("/secure", chain...)

	return r
}

func get(r *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func message(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Message string `json:"message"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body %s: %v", w.Body.String(), err)
	}

	return resp.Message
}

func claimsFor(id string, issuedAt time.Time) *auth.Claims {
	return &auth.Claims{
		UserID: id,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
}

func TestProtectMissingToken(t *testing.T) {
	r := protectedRouter(
		&fakeVerifier{verifyFn: func(string) (*auth.Claims, error) { t.Fatal("must not verify"); return nil, nil }},
		&fakeUserLoader{getFn: func(context.Context, string) (user.User, error) { return user.User{}, nil }},
	)

	for _, header := range []string{"", "Token abc", "Bearer"} {
		w := get(r, header)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: status = %d, want 401", header, w.Code)
		}

		if got := message(t, w); got != "You are not login, Please login to get access this route" {
			t.Fatalf("message = %q", got)
		}
	}
}

func TestProtectExpiredToken(t *testing.T) {
	r := protectedRouter(
		&fakeVerifier{verifyFn: func(string) (*auth.Claims, error) { return nil, auth.ErrTokenExpired }},
		&fakeUserLoader{getFn: func(context.Context, string) (user.User, error) { return user.User{}, nil }},
	)

	w := get(r, "Bearer whatever")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if got := message(t, w); got != "Expired token, please login again.." {
		t.Fatalf("message = %q", got)
	}
}

func TestProtectDeletedUser(t *testing.T) {
	r := protectedRouter(
		&fakeVerifier{verifyFn: func(string) (*auth.Claims, error) {
			return claimsFor("u-1", time.Now()), nil
		}},
		&fakeUserLoader{getFn: func(context.Context, string) (user.User, error) {
			return user.User{}, context.Canceled
		}},
	)

	w := get(r, "Bearer valid")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if got := message(t, w); got != "The user that belong to this token does no longer exist" {
		t.Fatalf("message = %q", got)
	}
}

func TestProtectStaleTokenAfterPasswordChange(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	changed := time.Now().Add(-time.Minute)

	r := protectedRouter(
		&fakeVerifier{verifyFn: func(string) (*auth.Claims, error) {
			return claimsFor("u-1", issued), nil
		}},
		&fakeUserLoader{getFn: func(context.Context, string) (user.User, error) {
			return user.User{ID: "u-1", PasswordChangedAt: &changed}, nil
		}},
	)

	w := get(r, "Bearer stale")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	if got := message(t, w); got != "User recently changed their password. Please log in again." {
		t.Fatalf("message = %q", got)
	}
}

func TestProtectSuccessExposesPrincipal(t *testing.T) {
	r := protectedRouter(
		&fakeVerifier{verifyFn: func(string) (*auth.Claims, error) {
			return claimsFor("u-1", time.Now()), nil
		}},
		&fakeUserLoader{getFn: func(_ context.Context, id string) (user.User, error) {
			return user.User{ID: id, Role: user.RoleUser}, nil
		}},
	)

	w := get(r, "Bearer ok")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.ID != "u-1" {
		t.Fatalf("principal id = %q", resp.ID)
	}
}

func TestAllowedTo(t *testing.T) {
	tests := []struct {
		name       string
		role       string
		allowed    []string
		wantStatus int
	}{
		{"admin_allowed", user.RoleAdmin, []string{user.RoleAdmin, user.RoleManager}, http.StatusOK},
		{"manager_allowed", user.RoleManager, []string{user.RoleAdmin, user.RoleManager}, http.StatusOK},
		{"plain_user_forbidden", user.RoleUser, []string{user.RoleAdmin, user.RoleManager}, http.StatusForbidden},
		{"manager_not_admin", user.RoleManager, []string{user.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			verifier := &fakeVerifier{verifyFn: func(string) (*auth.Claims, error) {
				return claimsFor("u-1", time.Now()), nil
			}}
			users := &fakeUserLoader{getFn: func(_ context.Context, id string) (user.User, error) {
				return user.User{ID: id, Role: tt.role}, nil
			}}

			guard := middlewares.NewAuthMiddleware(verifier, users)

			r := protectedRouter(verifier, users, guard.AllowedTo(tt.allowed...))

			w := get(r, "Bearer ok")

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			if tt.wantStatus == http.StatusForbidden {
				if got := message(t, w); got != "You are not allowed to access this route" {
					t.Fatalf("message = %q", got)
				}
			}
		})
	}
}
