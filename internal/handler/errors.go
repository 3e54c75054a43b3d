package handler

import (
	"errors"

	"github.com/fitlg/fitlg/internal/service"
	"github.com/fitlg/fitlg/internal/validation"
)

// userMessage extracts the message of an input error that can be shown as is.
func userMessage(err error) (string, bool) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message, true
	}

	var serr *service.ValidationError
	if errors.As(err, &serr) {
		return serr.Message, true
	}

	return "", false
}
