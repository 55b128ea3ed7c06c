// internal/campaign/errors.go
package campaign

import (
	"errors"
	"fmt"
)

// Common run errors
var (
	ErrAuthentication    = errors.New("authentication failed")
	ErrLoginFormNotFound = errors.New("login form not found")
	ErrNotConfigured     = errors.New("surface not configured")
)

// ErrorCode represents the step phase that failed
type ErrorCode string

const (
	ErrCodeNavigation ErrorCode = "NAVIGATION"
	ErrCodeExtraction ErrorCode = "EXTRACTION"
	ErrCodeWindow     ErrorCode = "WINDOW"
	ErrCodeConfig     ErrorCode = "CONFIG"
)

// StepError wraps a failure inside one surface step
type StepError struct {
	Code       ErrorCode
	Surface    string
	Message    string
	Underlying error
}

// Error implements the error interface
func (e *StepError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("%s [%s]: %s: %v", e.Code, e.Surface, e.Message, e.Underlying)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Code, e.Surface, e.Message)
}

// Unwrap returns the underlying error
func (e *StepError) Unwrap() error {
	return e.Underlying
}

// Is checks if the error matches the target
func (e *StepError) Is(target error) bool {
	if t, ok := target.(*StepError); ok {
		return e.Code == t.Code
	}
	return errors.Is(e.Underlying, target)
}

// NewStepError creates a new StepError
func NewStepError(code ErrorCode, surface, message string, err error) *StepError {
	return &StepError{
		Code:       code,
		Surface:    surface,
		Message:    message,
		Underlying: err,
	}
}
