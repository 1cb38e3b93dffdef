package workers

import (
	"context"
	"strings"
	"time"

	"miniurban-backend/internal/features/adminauth/service"
	"miniurban-backend/internal/platform/telegram"

	"github.com/rs/zerolog"
)

const startCommand = "/start"

// UpdateSource long-polls bot updates.
type UpdateSource interface {
	GetUpdates(ctx context.Context, offset int64, poll time.Duration) ([]telegram.Update, error)
}

// Confirmer consumes a login nonce for a Telegram user.
type Confirmer interface {
	Confirm(ctx context.Context, nonce string, tgID int64) (*service.ConfirmResult, error)
}

// TelegramPoller reads bot updates and confirms "/start <nonce>" deep links.
type TelegramPoller struct {
	source    UpdateSource
	confirmer Confirmer
	poll      time.Duration
	backoff   time.Duration
	logger    zerolog.Logger

	offset int64
}

func NewTelegramPoller(source UpdateSource, confirmer Confirmer, poll time.Duration, logger zerolog.Logger) *TelegramPoller {
	return &TelegramPoller{
		source:    source,
		confirmer: confirmer,
		poll:      poll,
		backoff:   time.Second,
		logger:    logger.With().Str("component", "telegram_poller").Logger(),
	}
}

// Start polls until ctx is canceled.
func (w *TelegramPoller) Start(ctx context.Context) {
	w.logger.Info().Dur("poll_timeout", w.poll).Msg("Starting Telegram update poller")

	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Stopping Telegram update poller")
			return
		default:
		}

		updates, err := w.source.GetUpdates(ctx, w.offset, w.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Warn().Err(err).Msg("Failed to fetch updates")
			select {
			case <-ctx.Done():
			case <-time.After(w.backoff):
			}
			continue
		}

		for _, u := range updates {
			w.handle(ctx, u)
			if u.UpdateID >= w.offset {
				w.offset = u.UpdateID + 1
			}
		}
	}
}

func (w *TelegramPoller) handle(ctx context.Context, u telegram.Update) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.From.IsBot {
		return
	}
	nonce, ok := parseStart(msg.Text)
	if !ok {
		return
	}

	// Confirm reports the outcome to the user itself.
	if _, err := w.confirmer.Confirm(ctx, nonce, msg.From.ID); err != nil {
		w.logger.Debug().Err(err).Int64("update_id", u.UpdateID).Msg("Deep link not confirmed")
	}
}

// parseStart extracts the payload of "/start <payload>", also accepting the
// "/start@botname" form used in group chats.
func parseStart(text string) (string, bool) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return "", false
	}
	cmd, _, _ := strings.Cut(fields[0], "@")
	if cmd != startCommand {
		return "", false
	}
	return fields[1], true
}
