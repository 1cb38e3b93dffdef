package nonce

import "time"

// LoginNonce correlates a browser login attempt with a confirmation coming
// from the Telegram bot.
type LoginNonce struct {
	Nonce         string    `json:"nonce"`
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	Used          bool      `json:"used"`
	AdminUserID   *string   `json:"admin_user_id,omitempty"`
	TgID          *int64    `json:"tg_id,omitempty"`
	ExchangeToken *string   `json:"exchange_token,omitempty"`
}

// Expired reports whether the confirmation window has passed at now.
func (n *LoginNonce) Expired(now time.Time) bool {
	return !now.Before(n.ExpiresAt)
}
