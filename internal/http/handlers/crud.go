package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
	"github.com/mohamedhany/eshop-api/internal/query"
	"github.com/mohamedhany/eshop-api/internal/repo/postgres"
	"github.com/mohamedhany/eshop-api/internal/validation"
)

// Store is what a resource needs from storage. *postgres.Collection
// satisfies it; tests plug in fakes.
type Store interface {
	Name() string
	SearchFields() []string
	CountAll(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, f *query.Features) ([]map[string]any, error)
	FindByID(ctx context.Context, id string) (map[string]any, error)
	Create(ctx context.Context, body map[string]any) (map[string]any, error)
	UpdateByID(ctx context.Context, id string, body map[string]any) (map[string]any, error)
	DeleteByID(ctx context.Context, id string) error
}

// Resource is the generic CRUD handler set. Every catalog entity gets
// one of these over its own collection; the per-entity behavior lives
// entirely in descriptors and validation rules.
type Resource struct {
	store Store
}

func NewResource(store Store) *Resource {
	return &Resource{store: store}
}

// GetAll lists documents through the full query pipeline:
// paginate, filter, keyword search, field limiting, sort.
func (r *Resource) GetAll(ctx *gin.Context) {
	r.list(ctx, ctx.Request.URL.Query())
}

// ScopedList pins one filter field to a path parameter. Nested routes
// like a category's subcategories mount this instead of GetAll.
func (r *Resource) ScopedList(field, param string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		params := ctx.Request.URL.Query()
		params.Set(field, ctx.Param(param))
		r.list(ctx, params)
	}
}

func (r *Resource) list(ctx *gin.Context, params url.Values) {
	total, err := r.store.CountAll(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list "+r.store.Name())
		return
	}

	f := query.NewFeatures(params).
		Paginate(total).
		Filter().
		Search(r.store.SearchFields()...).
		LimitFields().
		Sort()

	docs, err := r.store.FindAll(ctx.Request.Context(), f)

	if err != nil {
		RespondInternal(ctx, "Could not list "+r.store.Name())
		return
	}

	RespondList(ctx, f.Pagination(), docs)
}

func (r *Resource) GetOne(ctx *gin.Context) {
	id := ctx.Param("id")

	doc, err := r.store.FindByID(ctx.Request.Context(), id)

	if err != nil {
		r.failLookup(ctx, id, err)
		return
	}

	RespondData(ctx, http.StatusOK, doc)
}

func (r *Resource) CreateOne(ctx *gin.Context) {
	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	doc, err := r.store.Create(ctx.Request.Context(), body)

	if err != nil {
		Fail(ctx, err)
		return
	}

	RespondData(ctx, http.StatusCreated, doc)
}

func (r *Resource) UpdateOne(ctx *gin.Context) {
	id := ctx.Param("id")

	body, ok := requestBody(ctx)

	if !ok {
		return
	}

	doc, err := r.store.UpdateByID(ctx.Request.Context(), id, body)

	if err != nil {
		r.failLookup(ctx, id, err)
		return
	}

	RespondData(ctx, http.StatusOK, doc)
}

func (r *Resource) DeleteOne(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := r.store.DeleteByID(ctx.Request.Context(), id); err != nil {
		r.failLookup(ctx, id, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (r *Resource) failLookup(ctx *gin.Context, id string, err error) {
	if errors.Is(err, postgres.ErrNoDocument) {
		Fail(ctx, apperror.NoDocument(id))
		return
	}

	Fail(ctx, err)
}

// requestBody prefers the body the validation gate already parsed (and
// possibly mutated); handlers mounted without a gate read it themselves.
func requestBody(ctx *gin.Context) (map[string]any, bool) {
	if body, ok := validation.BodyFromContext(ctx); ok {
		return body, true
	}

	var body map[string]any

	if err := ctx.ShouldBindJSON(&body); err != nil {
		Fail(ctx, apperror.BadRequest("Invalid request body"))
		return nil, false
	}

	return body, true
}
