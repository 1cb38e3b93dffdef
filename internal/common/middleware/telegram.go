package middleware

import (
	"errors"
	"time"

	"miniurban-backend/internal/common/metrics"
	"miniurban-backend/internal/utils/telegram"

	"github.com/gin-gonic/gin"
)

// InitDataHeader carries the raw Mini App launch query string.
const InitDataHeader = "X-Telegram-Init-Data"

// legacyInitDataKey is accepted as a header or query parameter from older
// Mini App builds.
const legacyInitDataKey = "init_data"

// InitData verifies Telegram init data and stores it under InitDataKey.
// Requests without a usable user are rejected as malformed.
func InitData(botToken string, maxAge time.Duration, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(InitDataHeader)
		if raw == "" {
			raw = c.GetHeader(legacyInitDataKey)
		}
		if raw == "" {
			raw = c.Query(legacyInitDataKey)
		}

		data, err := telegram.VerifyInitData(raw, botToken, maxAge)
		if err == nil {
			_, err = data.RequireUser()
		}
		m.InitDataVerified(verifyResult(err))
		if err != nil {
			Abort(c, err)
			return
		}

		c.Set(InitDataKey, data)
		c.Next()
	}
}

// InitDataFrom returns the verified init data stored by InitData.
func InitDataFrom(c *gin.Context) (*telegram.InitData, bool) {
	v, ok := c.Get(InitDataKey)
	if !ok {
		return nil, false
	}
	data, ok := v.(*telegram.InitData)
	return data, ok && data != nil && data.User != nil
}

func verifyResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, telegram.ErrMalformedInput):
		return "malformed"
	case errors.Is(err, telegram.ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, telegram.ErrExpired):
		return "expired"
	default:
		return "error"
	}
}
