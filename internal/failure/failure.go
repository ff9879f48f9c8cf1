// Package failure classifies pipeline errors so that every stage failure can
// be reported as a single structured response with a matching HTTP status.
package failure

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrConfiguration  = errors.New("configuration error")
	ErrAuthentication = errors.New("authentication error")
	ErrValidation     = errors.New("validation error")
	ErrGeneration     = errors.New("generation error")
	ErrAcquisition    = errors.New("acquisition error")
	ErrPublish        = errors.New("publish error")
	ErrTimeout        = errors.New("timeout")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker. The marker should be one of the sentinels above.
// A context deadline in err is additionally tagged with ErrTimeout.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrPublish
	}
	if err == nil {
		return fmt.Errorf("%w: %s", marker, detail)
	}
	if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %s: %w: %w", marker, detail, ErrTimeout, err)
	}
	return fmt.Errorf("%w: %s: %w", marker, detail, err)
}

// HTTPStatus maps a classified error to the status code surfaced to callers.
// Unclassified errors are internal errors.
func HTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Kind returns a short label for the error class, used in logs and in the
// publication log.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrGeneration):
		return "generation"
	case errors.Is(err, ErrAcquisition):
		return "acquisition"
	case errors.Is(err, ErrPublish):
		return "publish"
	default:
		return "internal"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}

// messageError carries the short text shown to API callers alongside the
// full diagnostic chain.
type messageError struct {
	text string
	err  error
}

func (m *messageError) Error() string { return m.err.Error() }
func (m *messageError) Unwrap() error { return m.err }

// WithMessage attaches a caller-facing message to err.
func WithMessage(err error, text string) error {
	if err == nil {
		return nil
	}
	return &messageError{text: text, err: err}
}

// UserMessage returns the caller-facing message attached with WithMessage,
// or "" when there is none.
func UserMessage(err error) string {
	var m *messageError
	if errors.As(err, &m) {
		return m.text
	}
	return ""
}
