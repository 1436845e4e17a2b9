package validators_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/http/validators"
	"github.com/mohamedhany/eshop-api/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func run(t *testing.T, gate gin.HandlerFunc, method, path, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var seen map[string]any

	r := gin.New()
	r.Handle(method, path, gate, func(ctx *gin.Context) {
		seen, _ = validation.BodyFromContext(ctx)
		ctx.Status(http.StatusOK)
	})

	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w, seen
}

func fieldsWithErrors(t *testing.T, w *httptest.ResponseRecorder) map[string]bool {
	t.Helper()

	var resp struct {
		Errors []validation.FieldError `json:"errors"`
	}

	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body %s: %v", w.Body.String(), err)
	}

	out := map[string]bool{}

	for _, e := range resp.Errors {
		out[e.Field] = true
	}

	return out
}

func TestCreateCategoryDerivesSlug(t *testing.T) {
	w, seen := run(t, validators.CreateCategory(), http.MethodPost, "/categories", "/categories", `{"name":"Home Appliances"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if seen["slug"] != "home-appliances" {
		t.Fatalf("slug = %v", seen["slug"])
	}
}

func TestCreateCategoryLengthBounds(t *testing.T) {
	short, _ := run(t, validators.CreateCategory(), http.MethodPost, "/categories", "/categories", `{"name":"ab"}`)

	if short.Code != http.StatusBadRequest {
		t.Fatalf("short name: status = %d, want 400", short.Code)
	}

	if !fieldsWithErrors(t, short)["name"] {
		t.Fatal("expected a name error")
	}

	long, _ := run(t, validators.CreateCategory(), http.MethodPost, "/categories", "/categories",
		`{"name":"`+string(bytes.Repeat([]byte("x"), 33))+`"}`)

	if long.Code != http.StatusBadRequest {
		t.Fatalf("long name: status = %d, want 400", long.Code)
	}
}

func TestCreateSubCategoryBackfillsParentFromPath(t *testing.T) {
	const parent = "9f36cc2b-7f2c-4bb1-b7b0-9a3f9c1f6f4d"

	w, seen := run(t, validators.CreateSubCategory(), http.MethodPost,
		"/categories/:id/subcategories", "/categories/"+parent+"/subcategories", `{"name":"Phones"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if seen["category"] != parent {
		t.Fatalf("category = %v, want backfilled from path", seen["category"])
	}
}

func TestCreateSubCategoryRequiresParent(t *testing.T) {
	w, _ := run(t, validators.CreateSubCategory(), http.MethodPost, "/subcategories", "/subcategories", `{"name":"Phones"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if !fieldsWithErrors(t, w)["category"] {
		t.Fatal("expected a category error")
	}
}

func TestCreateProduct(t *testing.T) {
	const category = "9f36cc2b-7f2c-4bb1-b7b0-9a3f9c1f6f4d"

	valid := `{
		"title": "Cotton Shirt",
		"description": "A shirt",
		"quantity": 10,
		"price": 80,
		"priceAfterDiscount": 60,
		"imageCover": "cover.jpg",
		"colors": ["red", "blue"],
		"category": "` + category + `"
	}`

	w, seen := run(t, validators.CreateProduct(), http.MethodPost, "/products", "/products", valid)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}

	if seen["slug"] != "cotton-shirt" {
		t.Fatalf("slug = %v", seen["slug"])
	}
}

func TestCreateProductDiscountMustUndercutPrice(t *testing.T) {
	const category = "9f36cc2b-7f2c-4bb1-b7b0-9a3f9c1f6f4d"

	body := `{
		"title": "Cotton Shirt",
		"description": "A shirt",
		"quantity": 10,
		"price": 50,
		"priceAfterDiscount": 60,
		"imageCover": "cover.jpg",
		"category": "` + category + `"
	}`

	w, _ := run(t, validators.CreateProduct(), http.MethodPost, "/products", "/products", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if !fieldsWithErrors(t, w)["priceAfterDiscount"] {
		t.Fatal("expected a priceAfterDiscount error")
	}
}

func TestCreateProductCollectsEveryMissingField(t *testing.T) {
	w, _ := run(t, validators.CreateProduct(), http.MethodPost, "/products", "/products", `{}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	fields := fieldsWithErrors(t, w)

	for _, want := range []string{"title", "description", "quantity", "price", "imageCover", "category"} {
		if !fields[want] {
			t.Errorf("missing error for %s", want)
		}
	}
}

func TestCreateUserPasswordConfirmation(t *testing.T) {
	body := `{
		"name": "Ann",
		"email": "ann@shop.io",
		"password": "secret123",
		"passwordConfirm": "different"
	}`

	w, _ := run(t, validators.CreateUser(), http.MethodPost, "/users", "/users", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if !fieldsWithErrors(t, w)["password"] {
		t.Fatal("expected a password error")
	}
}

func TestCreateUserRoleWhitelist(t *testing.T) {
	body := `{
		"name": "Ann",
		"email": "ann@shop.io",
		"password": "secret123",
		"passwordConfirm": "secret123",
		"role": "superuser"
	}`

	w, _ := run(t, validators.CreateUser(), http.MethodPost, "/users", "/users", body)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	if !fieldsWithErrors(t, w)["role"] {
		t.Fatal("expected a role error")
	}
}

func TestGetValidatorRejectsBadId(t *testing.T) {
	w, _ := run(t, validators.GetBrand(), http.MethodGet, "/brands/:id", "/brands/not-a-uuid", "")

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
