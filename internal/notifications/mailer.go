package notifications

import "context"

type PasswordResetInput struct {
	Email string
	Name  string
	Code  string
}

// Mailer delivers the plaintext reset code out-of-band. The auth flow only
// depends on this interface; a send failure makes the caller roll back the
// persisted reset fields.
type Mailer interface {
	SendPasswordResetCode(ctx context.Context, input PasswordResetInput) error
}
