package auth

import (
	"errors"
	"fmt"
	"unicode"

	"github.com/custor/portal-api/internal/constants"
	"golang.org/x/crypto/bcrypt"
)

var ErrPasswordMismatch = errors.New("password does not match")

// IsStrongPassword reports whether password has at least MinPasswordLength
// runes, at most MaxPasswordBytes bytes, and contains an upper-case letter, a
// lower-case letter, a digit, and a character that is neither a letter nor a
// digit.
func IsStrongPassword(password string) bool {
	if len(password) > constants.MaxPasswordBytes {
		return false
	}

	var length int
	var hasUpper, hasLower, hasDigit, hasSymbol bool

	for _, r := range password {
		length++
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case !unicode.IsLetter(r):
			hasSymbol = true
		}
	}

	return length >= constants.MinPasswordLength && hasUpper && hasLower && hasDigit && hasSymbol
}

// HashPassword bcrypt-hashes password with the default cost.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword compares password against a stored bcrypt hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
