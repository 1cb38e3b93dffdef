package workers

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper drops nonces that can no longer be redeemed.
type Sweeper interface {
	Sweep(cutoff time.Time) int
}

// NonceJanitor periodically sweeps an in-process nonce store. Nonces are
// kept for retention after expiry so late polls still get a precise answer.
type NonceJanitor struct {
	store     Sweeper
	interval  time.Duration
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time
}

func NewNonceJanitor(store Sweeper, interval, retention time.Duration, logger zerolog.Logger) *NonceJanitor {
	return &NonceJanitor{
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger.With().Str("component", "nonce_janitor").Logger(),
		now:       time.Now,
	}
}

// Start sweeps every interval until ctx is canceled.
func (j *NonceJanitor) Start(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *NonceJanitor) sweep() int {
	n := j.store.Sweep(j.now().Add(-j.retention))
	if n > 0 {
		j.logger.Debug().Int("removed", n).Msg("Swept stale login nonces")
	}
	return n
}
