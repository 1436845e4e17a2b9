package validators

import (
	"github.com/gin-gonic/gin"

	"github.com/mohamedhany/eshop-api/internal/validation"
)

func matchesField(other, msg string) validation.Check {
	return validation.Custom("match", msg, func(value any, body map[string]any) bool {
		s, _ := value.(string)
		o, _ := body[other].(string)

		return s == o
	})
}

func GetUser() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid User id format"))
}

func CreateUser() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "name",
			Checks: []validation.Check{
				validation.Required("User required"),
				validation.MinLen(3, "Too short User name"),
			},
			Mutate: slugFromName("name"),
		},
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{
			Field: "password",
			Checks: []validation.Check{
				validation.Required("Password required"),
				validation.MinLen(6, "Password must be at least 6 characters"),
				matchesField("passwordConfirm", "Password Confirmation incorrect"),
			},
		},
		validation.Rule{
			Field:  "passwordConfirm",
			Checks: []validation.Check{validation.Required("Password confirmation required")},
		},
		validation.Rule{Field: "phone", Optional: true},
		validation.Rule{Field: "profileImg", Optional: true},
		validation.Rule{
			Field:    "role",
			Optional: true,
			Checks:   []validation.Check{validation.OneOf("Invalid role", "user", "manager", "admin")},
		},
	)
}

func UpdateUser() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid User id format"),
		validation.Rule{
			Field:    "name",
			Optional: true,
			Mutate:   slugFromName("name"),
		},
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{Field: "phone", Optional: true},
	)
}

func DeleteUser() gin.HandlerFunc {
	return validation.Gate(idParam("Invalid User id format"))
}

func ChangeUserPassword() gin.HandlerFunc {
	return validation.Gate(
		idParam("Invalid User id format"),
		validation.Rule{
			Field:  "passwordConfirm",
			Checks: []validation.Check{validation.Required("You must enter the password confirm")},
		},
		validation.Rule{
			Field: "password",
			Checks: []validation.Check{
				validation.Required("You must enter new password"),
				matchesField("passwordConfirm", "Password Confirmation incorrect"),
			},
		},
	)
}

// ChangeMyPassword additionally requires the caller's current password;
// the handler verifies it against the stored hash.
func ChangeMyPassword() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field:  "currentPassword",
			Checks: []validation.Check{validation.Required("You must enter your current password")},
		},
		validation.Rule{
			Field:  "passwordConfirm",
			Checks: []validation.Check{validation.Required("You must enter the password confirm")},
		},
		validation.Rule{
			Field: "password",
			Checks: []validation.Check{
				validation.Required("You must enter new password"),
				validation.MinLen(6, "Password must be at least 6 characters"),
				matchesField("passwordConfirm", "Password Confirmation incorrect"),
			},
		},
	)
}

func UpdateMe() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field:    "name",
			Optional: true,
			Mutate:   slugFromName("name"),
		},
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{Field: "phone", Optional: true},
	)
}

func SignUp() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "name",
			Checks: []validation.Check{
				validation.Required("User required"),
				validation.MinLen(3, "Too short User name"),
			},
			Mutate: slugFromName("name"),
		},
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{
			Field: "password",
			Checks: []validation.Check{
				validation.Required("Password required"),
				validation.MinLen(6, "Password must be at least 6 characters"),
				matchesField("passwordConfirm", "Password Confirmation incorrect"),
			},
		},
		validation.Rule{
			Field:  "passwordConfirm",
			Checks: []validation.Check{validation.Required("Password confirmation required")},
		},
	)
}

func Login() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{
			Field: "password",
			Checks: []validation.Check{
				validation.Required("Password required"),
				validation.MinLen(6, "Password must be at least 6 characters"),
			},
		},
	)
}

func ForgotPassword() gin.HandlerFunc {
	return validation.Gate(validation.Rule{
		Field: "email",
		Checks: []validation.Check{
			validation.Required("Email required"),
			validation.IsEmail("Invalid email address"),
		},
	})
}

func VerifyResetCode() gin.HandlerFunc {
	return validation.Gate(validation.Rule{
		Field:  "resetCode",
		Checks: []validation.Check{validation.Required("Reset code required")},
	})
}

func ResetPassword() gin.HandlerFunc {
	return validation.Gate(
		validation.Rule{
			Field: "email",
			Checks: []validation.Check{
				validation.Required("Email required"),
				validation.IsEmail("Invalid email address"),
			},
		},
		validation.Rule{
			Field: "newPassword",
			Checks: []validation.Check{
				validation.Required("New password required"),
				validation.MinLen(6, "Password must be at least 6 characters"),
			},
		},
	)
}
