package user

import "time"

const (
	RoleUser    = "user"
	RoleManager = "manager"
	RoleAdmin   = "admin"
)

type User struct {
	ID                    string     `json:"id"`
	Name                  string     `json:"name"`
	Slug                  string     `json:"slug,omitempty"`
	Email                 string     `json:"email"`
	Phone                 *string    `json:"phone,omitempty"`
	ProfileImg            *string    `json:"profileImg,omitempty"`
	PasswordHash          string     `json:"-"` // never expose hash in JSON
	PasswordChangedAt     *time.Time `json:"-"`
	PasswordResetCode     *string    `json:"-"`
	PasswordResetExpires  *time.Time `json:"-"`
	PasswordResetVerified *bool      `json:"-"`
	Role                  string     `json:"role"`
	Active                bool       `json:"active"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// ChangedPasswordAfter reports whether the password was rotated after the
// given token issue time. Stale tokens must be rejected.
func (u User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}

	// compare at second precision, JWT iat has no sub-second part
	return u.PasswordChangedAt.Unix() > issuedAt.Unix()
}
