package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/auth"
	"github.com/mohamedhany/eshop-api/internal/config"
	httpx "github.com/mohamedhany/eshop-api/internal/http"
	"github.com/mohamedhany/eshop-api/internal/notifications"
	"github.com/mohamedhany/eshop-api/internal/observability"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testRouter() *gin.Engine {
	return httpx.NewRouter(httpx.Deps{
		Cfg:    config.Config{Env: "test"},
		Log:    observability.NewLogger("test"),
		Tokens: auth.NewManager("test-secret", time.Hour),
		Mailer: notifications.NewLogMailer(),
	})
}

func TestUnmatchedRoute(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// unknown routes answer 400, not 404
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	var resp struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}

	if resp.Status != "fail" || resp.Message != "Can't find this route: /api/v1/nope" {
		t.Fatalf("envelope = %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	r := testRouter()

	targets := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/categories"},
		{http.MethodDelete, "/api/v1/products/9f36cc2b-7f2c-4bb1-b7b0-9a3f9c1f6f4d"},
		{http.MethodGet, "/api/v1/users/getMe"},
	}

	for _, target := range targets {
		req := httptest.NewRequest(target.method, target.path, nil)
		req.Header.Set("Content-Type", "application/json")

		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status = %d, want 401", target.method, target.path, w.Code)
		}
	}
}

func TestRequireJSONOnWrites(t *testing.T) {
	r := testRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.Header.Set("Content-Type", "text/plain")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", w.Code)
	}
}
