package errorx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/amoylab/rentmanager/internal/i18n"

	"gorm.io/gorm"
)

// Code is the machine readable error class returned to clients
type Code string

const (
	CodeValidation   Code = "VALIDATION_ERROR"
	CodeUnauthorized Code = "UNAUTHORIZED"
	CodeForbidden    Code = "FORBIDDEN"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeInternal     Code = "INTERNAL_ERROR"
)

var statusByCode = map[Code]int{
	CodeValidation:   http.StatusBadRequest,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeForbidden:    http.StatusForbidden,
	CodeNotFound:     http.StatusNotFound,
	CodeConflict:     http.StatusConflict,
	CodeInternal:     http.StatusInternalServerError,
}

// FieldError is one localizable message attached to a request field
type FieldError struct {
	MessageID string
	Params    map[string]any
}

// APIError is the error type every service returns to the HTTP layer. The
// message is resolved through i18n at render time; cause is only logged.
type APIError struct {
	Code       Code
	HTTPStatus int
	MessageID  string
	Params     map[string]any
	Details    map[string][]FieldError
	cause      error
}

func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.MessageID, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.MessageID)
}

func (e *APIError) Unwrap() error {
	return e.cause
}

// Is matches another *APIError by code and message id
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code && (t.MessageID == "" || e.MessageID == t.MessageID)
}

func New(code Code, messageID string) *APIError {
	return &APIError{
		Code:       code,
		HTTPStatus: statusByCode[code],
		MessageID:  messageID,
	}
}

// WithParams returns a copy carrying template data for the message
func (e *APIError) WithParams(params map[string]any) *APIError {
	clone := *e
	clone.Params = params
	return &clone
}

// WithCause returns a copy wrapping err for logging
func (e *APIError) WithCause(err error) *APIError {
	clone := *e
	clone.cause = err
	return &clone
}

// WithField returns a copy with one more field-level message
func (e *APIError) WithField(field, messageID string, params map[string]any) *APIError {
	clone := *e
	clone.Details = make(map[string][]FieldError, len(e.Details)+1)
	for k, v := range e.Details {
		clone.Details[k] = append([]FieldError(nil), v...)
	}
	clone.Details[field] = append(clone.Details[field], FieldError{MessageID: messageID, Params: params})
	return &clone
}

func Validation(messageID string) *APIError { return New(CodeValidation, messageID) }

func Unauthorized() *APIError { return New(CodeUnauthorized, i18n.MsgUnauthorized) }

func Forbidden(messageID string) *APIError { return New(CodeForbidden, messageID) }

func NotFound(messageID string) *APIError { return New(CodeNotFound, messageID) }

func Conflict(messageID string) *APIError { return New(CodeConflict, messageID) }

func Internal(cause error) *APIError {
	return New(CodeInternal, i18n.MsgInternal).WithCause(cause)
}

// FromDB maps a store error onto the client error taxonomy. notFoundID is
// the message used when the record does not exist.
func FromDB(err error, notFoundID string) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound(notFoundID).WithCause(err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Conflict(i18n.MsgConflict).WithCause(err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Validation(i18n.MsgInvalidRequest).WithCause(err)
	default:
		return Internal(err)
	}
}

// As converts any error to an *APIError, treating unknown errors as internal
func As(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err)
}
