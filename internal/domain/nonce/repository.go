package nonce

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("login nonce not found")

// Repository persists login nonces.
type Repository interface {
	Create(ctx context.Context, n *LoginNonce) error
	Get(ctx context.Context, nonce string) (*LoginNonce, error)
	// MarkUsed flips used=false to true for an unexpired nonce in a single
	// atomic step and records the confirmer. ok is false when the row was not
	// in a confirmable state; the caller re-reads to find out why.
	MarkUsed(ctx context.Context, nonce string, tgID int64, adminUserID string, now time.Time) (ok bool, err error)
	// AttachExchangeToken stores the token only if the nonce is used, was
	// confirmed by tgID, and has no token yet.
	AttachExchangeToken(ctx context.Context, nonce string, tgID int64, token string) (ok bool, err error)
}
