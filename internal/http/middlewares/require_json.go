package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose Content-Type is not JSON.
// A media-type parameter suffix (charset) is tolerated.
func RequireJSON() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !hasJSONBody(ctx.Request) {
			ctx.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
				"status":  "fail",
				"message": "Content-Type must be application/json",
			})
			return
		}

		ctx.Next()
	}
}

func hasJSONBody(req *http.Request) bool {
	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return true
	}

	mediaType, _, _ := strings.Cut(req.Header.Get("Content-Type"), ";")

	return strings.TrimSpace(strings.ToLower(mediaType)) == "application/json"
}
