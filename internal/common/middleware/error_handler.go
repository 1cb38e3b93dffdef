package middleware

import (
	stderrors "errors"
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"miniurban-backend/internal/common/errors"
	"miniurban-backend/internal/features/adminauth/guard"
	adminservice "miniurban-backend/internal/features/adminauth/service"
	"miniurban-backend/internal/features/adminauth/session"
	userservice "miniurban-backend/internal/features/user/service"
	"miniurban-backend/internal/utils/telegram"
)

// Context keys shared by middleware and handlers.
const (
	RequestIDKey = "request_id"
	InitDataKey  = "init_data"
	AdminKey     = "admin_session"
)

const requestIDHeader = "X-Request-ID"

// ErrorHandler recovers panics into a generic 500 response.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error().
			Str("request_id", getRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Interface("panic", recovered).
			Str("stack", string(debug.Stack())).
			Msg("Panic recovered")

		sendErrorResponse(c, errors.NewInternalError(fmt.Errorf("panic: %v", recovered)), logger)
	})
}

// RequestID propagates X-Request-ID or assigns a fresh one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(requestIDHeader, requestID)
		c.Next()
	}
}

type ErrorBody struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id"`
}

// Abort maps err onto the public error taxonomy, logs it and writes the
// response.
func Abort(c *gin.Context, err error) {
	sendErrorResponse(c, ToAppError(err), requestLogger(c))
}

// ToAppError translates package sentinels into an AppError. Unknown errors
// become a generic internal error.
func ToAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}

	var code errors.ErrorCode
	var message string
	switch {
	case stderrors.Is(err, telegram.ErrMalformedInput):
		code, message = errors.ErrCodeMalformedInput, "malformed init data"
	case stderrors.Is(err, telegram.ErrInvalidSignature):
		code, message = errors.ErrCodeInvalidSignature, "invalid init data signature"
	case stderrors.Is(err, telegram.ErrExpired):
		code, message = errors.ErrCodeExpired, "init data expired"
	case stderrors.Is(err, session.ErrSessionExpired):
		code, message = errors.ErrCodeExpired, "session expired"
	case stderrors.Is(err, guard.ErrUnauthorized),
		stderrors.Is(err, session.ErrNoSession),
		stderrors.Is(err, session.ErrSessionInvalid):
		code, message = errors.ErrCodeUnauthorized, "unauthorized"
	case stderrors.Is(err, adminservice.ErrInvalidCredentials):
		code, message = errors.ErrCodeUnauthorized, "invalid credentials"
	case stderrors.Is(err, guard.ErrForbidden),
		stderrors.Is(err, adminservice.ErrForbidden):
		code, message = errors.ErrCodeForbidden, "forbidden"
	case stderrors.Is(err, adminservice.ErrNonceNotFound):
		code, message = errors.ErrCodeNonceNotFound, "login nonce not found"
	case stderrors.Is(err, adminservice.ErrNonceUsed):
		code, message = errors.ErrCodeNonceUsed, "login nonce already used"
	case stderrors.Is(err, adminservice.ErrNonceExpired):
		code, message = errors.ErrCodeNonceExpired, "login nonce expired"
	case stderrors.Is(err, userservice.ErrUserNotFound):
		code, message = errors.ErrCodeNotFound, "user not found"
	case stderrors.Is(err, adminservice.ErrProviderUnavailable):
		code, message = errors.ErrCodeProviderUnavailable, "identity provider unavailable"
	case stderrors.Is(err, adminservice.ErrNotConfigured),
		stderrors.Is(err, telegram.ErrNoBotToken):
		code, message = errors.ErrCodeNotConfigured, "internal server error"
	case stderrors.Is(err, adminservice.ErrDataSource),
		stderrors.Is(err, userservice.ErrDataSource):
		return errors.NewDataSourceError(err)
	default:
		return errors.NewInternalError(err)
	}
	return errors.Wrap(err, code, message)
}

func sendErrorResponse(c *gin.Context, appErr *errors.AppError, logger zerolog.Logger) {
	requestID := getRequestID(c)
	appErr.WithRequestID(requestID)

	logError(appErr, logger, c)

	c.AbortWithStatusJSON(appErr.HTTPStatus(), ErrorResponse{
		Success:   false,
		Error:     ErrorBody{Code: appErr.Code, Message: appErr.Message},
		RequestID: requestID,
	})
}

func logError(appErr *errors.AppError, logger zerolog.Logger, c *gin.Context) {
	var event *zerolog.Event
	switch {
	case appErr.IsInternal():
		event = logger.Error()
	case appErr.IsSecurity():
		event = logger.Warn()
	default:
		event = logger.Info()
	}

	event = event.
		Str("request_id", appErr.RequestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Str("error_code", string(appErr.Code)).
		Int("status", appErr.HTTPStatus())
	if appErr.Cause != nil {
		event = event.Err(appErr.Cause)
	}
	if len(appErr.Details) > 0 {
		event = event.Interface("details", appErr.Details)
	}
	event.Msg(appErr.Message)
}

func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return "unknown"
}
