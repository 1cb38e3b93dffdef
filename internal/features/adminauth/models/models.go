package models

import (
	"time"

	"miniurban-backend/internal/features/adminauth/session"
)

// EmailLoginRequest is the body of an email/password login
type EmailLoginRequest struct {
	Email    string `json:"email" binding:"required" example:"ops@example.org"`
	Password string `json:"password" binding:"required" example:"correct horse battery staple"`
}

// CallbackRequest is sent by the bot when a user opens the deep link
type CallbackRequest struct {
	Nonce string `json:"nonce" binding:"required" example:"Xq3v9pB0kzJrH1mN2cW4yT6uA8sD5fGh"`
	TgID  int64  `json:"tg_id" binding:"required" example:"123456789"`
}

// WaitRequest polls a started Telegram login
type WaitRequest struct {
	Nonce string `json:"nonce" binding:"required" example:"Xq3v9pB0kzJrH1mN2cW4yT6uA8sD5fGh"`
}

// Session is the public view of an admin session
// @Description Admin session claims
type Session struct {
	Subject   string     `json:"sub" example:"6c1f0a8e-2b7d-4f8a-9d3e-5b2c7a1e4f90"`
	Email     *string    `json:"email,omitempty" example:"ops@example.org"`
	TgID      *int64     `json:"tg_id,omitempty" example:"123456789"`
	Role      string     `json:"role" example:"manager" enums:"admin,manager,operator"`
	Kind      string     `json:"kind" example:"telegram" enums:"email,telegram,dev"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// SessionResponse wraps the current session
type SessionResponse struct {
	OK      bool    `json:"ok" example:"true"`
	Session Session `json:"session"`
}

type OKResponse struct {
	OK bool `json:"ok" example:"true"`
}

func ToSession(p *session.Payload) Session {
	out := Session{
		Subject: p.Subject,
		Email:   p.Email,
		TgID:    p.TgID,
		Role:    p.Role,
		Kind:    string(p.Kind),
	}
	if !p.ExpiresAt.IsZero() {
		exp := p.ExpiresAt
		out.ExpiresAt = &exp
	}
	return out
}
