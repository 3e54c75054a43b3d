package validation

// Error is a validation failure whose message is safe to show to users.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func fail(message string) error {
	return &Error{Message: message}
}
