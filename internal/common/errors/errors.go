package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// ErrorCode is the machine-readable error kind returned to clients.
type ErrorCode string

const (
	ErrCodeInternal     ErrorCode = "INTERNAL_ERROR"
	ErrCodeBadRequest   ErrorCode = "BAD_REQUEST"
	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Init data
	ErrCodeMalformedInput   ErrorCode = "MALFORMED_INPUT"
	ErrCodeInvalidSignature ErrorCode = "INVALID_SIGNATURE"
	ErrCodeExpired          ErrorCode = "EXPIRED"

	// Login nonce
	ErrCodeNonceNotFound ErrorCode = "NONCE_NOT_FOUND"
	ErrCodeNonceUsed     ErrorCode = "NONCE_ALREADY_USED"
	ErrCodeNonceExpired  ErrorCode = "NONCE_EXPIRED"

	// Infrastructure
	ErrCodeDataSource          ErrorCode = "DATA_SOURCE_ERROR"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeNotConfigured       ErrorCode = "NOT_CONFIGURED"
)

// AppError is a typed application error. Cause and Stack stay server-side.
type AppError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	RequestID string                 `json:"request_id,omitempty"`
	Stack     []string               `json:"-"`
	Cause     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// HTTPStatus maps the error code to a response status.
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeBadRequest, ErrCodeMalformedInput:
		return http.StatusBadRequest
	case ErrCodeUnauthorized, ErrCodeInvalidSignature, ErrCodeExpired:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound, ErrCodeNonceNotFound:
		return http.StatusNotFound
	case ErrCodeNonceUsed:
		return http.StatusConflict
	case ErrCodeNonceExpired:
		return http.StatusGone
	case ErrCodeProviderUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// IsInternal reports whether the error should be logged at error level.
func (e *AppError) IsInternal() bool {
	switch e.Code {
	case ErrCodeInternal, ErrCodeDataSource, ErrCodeProviderUnavailable, ErrCodeNotConfigured:
		return true
	}
	return false
}

// IsSecurity reports whether the error may indicate tampering or probing.
func (e *AppError) IsSecurity() bool {
	switch e.Code {
	case ErrCodeInvalidSignature, ErrCodeUnauthorized, ErrCodeForbidden:
		return true
	}
	return false
}

func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithRequestID(requestID string) *AppError {
	e.RequestID = requestID
	return e
}

// New creates an application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now(),
		Stack:     getStackTrace(),
	}
}

// Wrap attaches a cause to a new application error.
func Wrap(err error, code ErrorCode, message string) *AppError {
	appErr := New(code, message)
	appErr.Cause = err
	return appErr
}

func getStackTrace() []string {
	var stack []string
	for i := 2; ; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		if strings.Contains(fn.Name(), "internal/common/errors") {
			continue
		}
		stack = append(stack, fmt.Sprintf("%s:%d %s", file, line, fn.Name()))
		if len(stack) >= 10 {
			break
		}
	}
	return stack
}

func NewUnauthorizedError() *AppError {
	return New(ErrCodeUnauthorized, "unauthorized")
}

// NewForbiddenError deliberately carries no reason to avoid enumeration.
func NewForbiddenError() *AppError {
	return New(ErrCodeForbidden, "forbidden")
}

func NewBadRequestError(reason string) *AppError {
	return New(ErrCodeBadRequest, reason)
}

func NewDataSourceError(err error) *AppError {
	return Wrap(err, ErrCodeDataSource, "internal server error")
}

func NewInternalError(err error) *AppError {
	return Wrap(err, ErrCodeInternal, "internal server error")
}

// AsAppError finds the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
