package email

import (
	"net/mail"
	"strings"
	"unicode"

	dErrors "familyhub/pkg/domain-errors"
)

// MaxLength follows the RFC 5321 path limit.
const MaxLength = 254

// Normalize lower-cases and trims an address. Invitation and account lookups
// compare normalized addresses only.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Validate checks that a normalized address is a bare addr-spec.
// Display-name forms such as "Jane <jane@example.com>" are rejected.
func Validate(address string) error {
	if address == "" {
		return dErrors.New(dErrors.CodeValidation, "email is required")
	}
	if len(address) > MaxLength {
		return dErrors.New(dErrors.CodeValidation, "email is too long")
	}
	parsed, err := mail.ParseAddress(address)
	if err != nil || parsed.Address != address {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	at := strings.LastIndexByte(address, '@')
	if at <= 0 || !strings.Contains(address[at+1:], ".") {
		return dErrors.New(dErrors.CodeValidation, "email is invalid")
	}
	return nil
}

// NormalizeAndValidate is the usual entry point for untrusted input.
func NormalizeAndValidate(address string) (string, error) {
	normalized := Normalize(address)
	if err := Validate(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// Equal compares two addresses case-insensitively.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// DeriveNameFromEmail guesses a first and last name from the local part.
func DeriveNameFromEmail(email string) (string, string) {
	localPart := email
	if at := strings.IndexByte(email, '@'); at > 0 {
		localPart = email[:at]
	}

	parts := strings.FieldsFunc(localPart, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})

	if len(parts) == 0 {
		return "User", "User"
	}

	first := capitalize(parts[0])
	last := "User"
	if len(parts) > 1 {
		last = capitalize(parts[len(parts)-1])
	}

	return first, last
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
