package identity

import (
	"strings"
	"unicode"
)

// ValidateEmail checks the basic shape of an email address before it is sent
// to the provider.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return NewAuthError(ReasonInvalidInput, "email is required")
	}
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return NewAuthError(ReasonInvalidInput, "invalid email format")
	}
	if strings.ContainsAny(email, " \t\n\r") {
		return NewAuthError(ReasonInvalidInput, "email must not contain whitespace")
	}
	return nil
}

// ValidatePasswordStrength checks if a password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return NewAuthError(ReasonInvalidInput, "password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return NewAuthError(ReasonInvalidInput, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		return NewAuthError(ReasonInvalidInput, "password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return NewAuthError(ReasonInvalidInput, "password must contain at least one number")
	}

	return nil
}
