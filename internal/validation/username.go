package validation

import "strings"

// ValidateUsername validates a login name
// Letters, digits and @ . + - _ only, at most 50 characters
func ValidateUsername(username string) error {
	trimmed := strings.TrimSpace(username)

	if trimmed == "" {
		return fail("username is required")
	}

	if len(trimmed) > 50 {
		return fail("username is too long (max 50 characters)")
	}

	for _, r := range trimmed {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("@.+-_", r):
		default:
			return fail("username may only contain letters, digits and @ . + - _")
		}
	}

	return nil
}
