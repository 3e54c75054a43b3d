package service

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden    = errors.New("not allowed")
	ErrUserInactive = errors.New("account is not activated")
)

// ValidationError reports input that cannot be accepted as given.
// Field names the offending input, Message is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MalformedRecordError reports a stored row whose enum or reference no longer makes sense.
type MalformedRecordError struct {
	Entity string
	ID     string
	Err    error
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s %s: %v", e.Entity, e.ID, e.Err)
}

func (e *MalformedRecordError) Unwrap() error {
	return e.Err
}
