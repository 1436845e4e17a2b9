package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RespondJSONWithETag writes payload with a strong ETag and answers a
// matching If-None-Match with 304. List endpoints use this so storefronts
// can poll catalog pages cheaply.
func RespondJSONWithETag(ctx *gin.Context, status int, payload any) {
	etag, err := buildETag(payload)

	if err != nil {
		ctx.JSON(status, payload)
		return
	}

	ctx.Header("ETag", etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(status, payload)
}

// buildETag digests the JSON encoding of the payload, so the tag changes
// exactly when the response body would.
func buildETag(payload any) (string, error) {
	body, err := json.Marshal(payload)

	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(body)

	return `"` + hex.EncodeToString(sum[:]) + `"`, nil
}

func ifNoneMatchMatches(header, etag string) bool {
	header = strings.TrimSpace(header)

	if header == "" || etag == "" {
		return false
	}

	if header == "*" {
		return true
	}

	want := normalizeETag(etag)

	for _, candidate := range strings.Split(header, ",") {
		if normalizeETag(candidate) == want {
			return true
		}
	}

	return false
}

// normalizeETag strips the weak-validator prefix so W/"abc" compares
// equal to "abc".
func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "W/")

	return strings.TrimSpace(v)
}
