package validation

import "strings"

var ErrPasswordMismatch error = &Error{Message: "passwords do not match"}

// ValidatePassword validates password strength
// Minimum 8 characters, blocks common patterns
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fail("password must be at least 8 characters")
	}

	// Maximum length: 72 bytes (bcrypt limitation)
	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return fail("password must not exceed 72 characters")
	}

	// Check for common/weak patterns
	lower := strings.ToLower(password)
	commonPatterns := []string{
		"password", "motdepasse", "123456", "azerty", "qwerty",
		"admin", "letmein", "welcome", "crossfit",
	}

	for _, pattern := range commonPatterns {
		if strings.Contains(lower, pattern) {
			return fail("password is too common, please choose a stronger one")
		}
	}

	return nil
}

// ValidatePasswordPair checks a password and its confirmation field.
func ValidatePasswordPair(password, check string) error {
	if password != check {
		return ErrPasswordMismatch
	}
	return ValidatePassword(password)
}
