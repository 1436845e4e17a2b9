package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/apperror"
	"github.com/mohamedhany/eshop-api/internal/query"
)

// Fail hands the error to the global responder and stops the chain.
func Fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}

// RespondData is the single-record success envelope.
func RespondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{"data": data})
}

// RespondList is the list envelope: result count, pagination, documents.
func RespondList(ctx *gin.Context, pagination query.Pagination, data []map[string]any) {
	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"results":          len(data),
		"paginationResult": pagination,
		"data":             data,
	})
}

// RespondInternal is for failures the caller cannot say more about.
func RespondInternal(ctx *gin.Context, message string) {
	Fail(ctx, apperror.Internal(message))
}
