package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stemsi/institute-console/internal/validator"
)

// Common service errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("admin token expired and could not be refreshed")
	ErrNotFound           = errors.New("record not found")
	ErrWrongPassword      = errors.New("current password is incorrect")
)

// ValidationError carries per-field messages. It is returned before any
// backend request is made.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

// AsValidationError unwraps err into a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// check runs the binding rules on form.
func check(form interface{}) error {
	if fields := validator.Check(form); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}
