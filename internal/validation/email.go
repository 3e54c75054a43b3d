package validation

import (
	"net/mail"
	"strings"
)

// maxEmailLen is the longest address SMTP accepts.
const maxEmailLen = 254

// ValidateEmail accepts a bare address such as "jane@example.com". Display
// names ("Jane <jane@example.com>") are rejected since the value is stored as is.
func ValidateEmail(email string) error {
	switch {
	case email == "":
		return fail("email address is required")
	case len(email) > maxEmailLen:
		return fail("email address is too long (max 254 characters)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndexByte(email, '@')+1:], ".") {
		return fail("invalid email address format")
	}
	return nil
}
