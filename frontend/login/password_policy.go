package login

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

const minPasswordLength = 12

var (
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrPasswordTooWeak  = errors.New("password must include upper, lower, digit and symbol")
	ErrPasswordSpaces   = errors.New("password must not start or end with spaces")
)

// ValidatePasswordPolicy applies to operator passwords only. Passwords of
// users managed through the backend follow the backend's own rules.
func ValidatePasswordPolicy(password string) error {
	if strings.TrimSpace(password) != password {
		return ErrPasswordSpaces
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return ErrPasswordTooShort
	}

	var classes [4]bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			classes[0] = true
		case unicode.IsLower(r):
			classes[1] = true
		case unicode.IsDigit(r):
			classes[2] = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			classes[3] = true
		}
	}
	for _, ok := range classes {
		if !ok {
			return ErrPasswordTooWeak
		}
	}
	return nil
}
