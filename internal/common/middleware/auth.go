package middleware

import (
	"crypto/subtle"

	"miniurban-backend/internal/common/errors"
	"miniurban-backend/internal/features/adminauth/guard"
	"miniurban-backend/internal/features/adminauth/session"

	"github.com/gin-gonic/gin"
)

// BotSecretHeader authenticates the bot process to the callback endpoint.
const BotSecretHeader = "X-Bot-Secret"

// RequireAdmin runs the guard and stores the admitted session under AdminKey.
func RequireAdmin(g *guard.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := g.Authorize(c.Request)
		if err != nil {
			Abort(c, err)
			return
		}

		c.Set(AdminKey, payload)
		c.Next()
	}
}

// AdminFrom returns the session stored by RequireAdmin.
func AdminFrom(c *gin.Context) (*session.Payload, bool) {
	v, ok := c.Get(AdminKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*session.Payload)
	return p, ok && p != nil
}

// RequireBotSecret admits requests whose X-Bot-Secret matches secret. An
// empty secret disables the endpoint.
func RequireBotSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			Abort(c, errors.New(errors.ErrCodeNotConfigured, "internal server error"))
			return
		}
		got := c.GetHeader(BotSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			Abort(c, errors.NewUnauthorizedError())
			return
		}
		c.Next()
	}
}
