package postgres

import (
	"strings"

	"github.com/mohamedhany/eshop-api/internal/security"
)

// UserWriteHook is the users collection pre-write hook: plaintext
// password fields never reach the table. Plug it in with WithBeforeWrite.
func UserWriteHook(doc map[string]any) error {
	if plain, ok := doc["password"].(string); ok && plain != "" {
		hash, err := security.HashPassword(plain)

		if err != nil {
			return err
		}

		doc["passwordHash"] = hash
	}

	delete(doc, "password")
	delete(doc, "passwordConfirm")
	delete(doc, "currentPassword")

	if email, ok := doc["email"].(string); ok {
		doc["email"] = strings.ToLower(email)
	}

	return nil
}
