// Package memory keeps login nonces in process memory. It is meant for
// single-instance development and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"miniurban-backend/internal/domain/nonce"
)

type NonceRepository struct {
	mu     sync.Mutex
	nonces map[string]nonce.LoginNonce
}

func NewNonceRepository() *NonceRepository {
	return &NonceRepository{nonces: make(map[string]nonce.LoginNonce)}
}

func (r *NonceRepository) Create(_ context.Context, n *nonce.LoginNonce) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonces[n.Nonce] = *n
	return nil
}

func (r *NonceRepository) Get(_ context.Context, value string) (*nonce.LoginNonce, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nonces[value]
	if !ok {
		return nil, nonce.ErrNotFound
	}
	return &n, nil
}

func (r *NonceRepository) MarkUsed(_ context.Context, value string, tgID int64, adminUserID string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nonces[value]
	if !ok || n.Used || n.Expired(now) {
		return false, nil
	}
	n.Used = true
	n.TgID = &tgID
	n.AdminUserID = &adminUserID
	r.nonces[value] = n
	return true, nil
}

func (r *NonceRepository) AttachExchangeToken(_ context.Context, value string, tgID int64, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nonces[value]
	if !ok || !n.Used || n.TgID == nil || *n.TgID != tgID || n.ExchangeToken != nil {
		return false, nil
	}
	n.ExchangeToken = &token
	r.nonces[value] = n
	return true, nil
}

// Sweep drops nonces that expired before cutoff.
func (r *NonceRepository) Sweep(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for k, n := range r.nonces {
		if n.ExpiresAt.Before(cutoff) {
			delete(r.nonces, k)
			removed++
		}
	}
	return removed
}
