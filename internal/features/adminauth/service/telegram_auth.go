package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"miniurban-backend/internal/common/metrics"
	"miniurban-backend/internal/domain/nonce"
	"miniurban-backend/internal/domain/staff"
	"miniurban-backend/internal/features/adminauth/session"

	"github.com/rs/zerolog"
)

const (
	nonceBytes         = 24
	exchangeTokenBytes = 32
	notifyTimeout      = 10 * time.Second
)

// Notifier delivers bot messages to the confirming Telegram user.
type Notifier interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

type TelegramOptions struct {
	BotUsername string
	LinkHost    string
	NonceTTL    time.Duration
	// RedeemGrace is how long after expires_at a confirmed nonce can still
	// be exchanged for a session.
	RedeemGrace time.Duration
}

type StartResult struct {
	Nonce     string    `json:"nonce"`
	DeepLink  string    `json:"deep_link"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ConfirmResult struct {
	AdminUserID string `json:"admin_user_id"`
	Role        string `json:"role"`
	// ExchangeToken is empty when it could not be stored.
	ExchangeToken string `json:"exchange_token,omitempty"`
}

type WaitUser struct {
	TgID int64  `json:"tg_id"`
	Role string `json:"role"`
}

type WaitResult struct {
	Ready   bool      `json:"ready"`
	Expired bool      `json:"expired,omitempty"`
	User    *WaitUser `json:"user,omitempty"`

	Token   string           `json:"-"`
	Session *session.Payload `json:"-"`
}

// TelegramAuthService runs the deep-link login: the browser starts a nonce,
// the bot confirms it for a Telegram user, the browser polls until a session
// can be issued.
type TelegramAuthService struct {
	nonces   nonce.Repository
	staff    staff.Repository
	sessions *session.Manager
	notifier Notifier
	opts     TelegramOptions
	logger   zerolog.Logger
	metrics  *metrics.Metrics

	now    func() time.Time
	random io.Reader

	inflight sync.WaitGroup
}

// NewTelegramAuthService wires the coordinator. notifier may be nil.
func NewTelegramAuthService(
	nonces nonce.Repository,
	staffRepo staff.Repository,
	sessions *session.Manager,
	notifier Notifier,
	opts TelegramOptions,
	logger zerolog.Logger,
	m *metrics.Metrics,
) *TelegramAuthService {
	if opts.LinkHost == "" {
		opts.LinkHost = "t.me"
	}
	if opts.NonceTTL <= 0 {
		opts.NonceTTL = 5 * time.Minute
	}
	return &TelegramAuthService{
		nonces:   nonces,
		staff:    staffRepo,
		sessions: sessions,
		notifier: notifier,
		opts:     opts,
		logger:   logger.With().Str("component", "telegram_auth").Logger(),
		metrics:  m,
		now:      time.Now,
		random:   rand.Reader,
	}
}

// Start creates a fresh nonce and the bot deep link that carries it.
func (s *TelegramAuthService) Start(ctx context.Context) (*StartResult, error) {
	if s.opts.BotUsername == "" {
		return nil, fmt.Errorf("%w: bot username is empty", ErrNotConfigured)
	}

	value, err := s.token(nonceBytes)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	n := &nonce.LoginNonce{
		Nonce:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.opts.NonceTTL),
	}
	if err := s.nonces.Create(ctx, n); err != nil {
		s.metrics.Handshake("start", "error")
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	s.metrics.Handshake("start", "ok")
	return &StartResult{
		Nonce:     value,
		DeepLink:  fmt.Sprintf("https://%s/%s?start=%s", s.opts.LinkHost, s.opts.BotUsername, value),
		ExpiresAt: n.ExpiresAt,
	}, nil
}

// Confirm consumes the nonce on behalf of tgID. Exactly one confirmation of
// a nonce succeeds. The outcome is reported to tgID through the bot.
func (s *TelegramAuthService) Confirm(ctx context.Context, value string, tgID int64) (*ConfirmResult, error) {
	res, err := s.confirm(ctx, value, tgID)
	s.notify(tgID, confirmMessage(err))

	switch {
	case err == nil:
		s.metrics.Handshake("confirm", "ok")
		s.logger.Info().Int64("tg_id", tgID).Str("admin_user_id", res.AdminUserID).Msg("Telegram login confirmed")
	case errors.Is(err, ErrDataSource):
		s.metrics.Handshake("confirm", "error")
		s.logger.Error().Err(err).Int64("tg_id", tgID).Msg("Telegram login confirmation failed")
	default:
		s.metrics.Handshake("confirm", "rejected")
		s.logger.Info().Err(err).Int64("tg_id", tgID).Msg("Telegram login confirmation rejected")
	}
	return res, err
}

func (s *TelegramAuthService) confirm(ctx context.Context, value string, tgID int64) (*ConfirmResult, error) {
	n, err := s.load(ctx, value)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if n.Used {
		return nil, ErrNonceUsed
	}
	if n.Expired(now) {
		return nil, ErrNonceExpired
	}

	m, r, err := findActiveByTelegramID(ctx, s.staff, tgID)
	if err != nil {
		return nil, err
	}

	ok, err := s.nonces.MarkUsed(ctx, value, tgID, m.ID, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}
	if !ok {
		return nil, s.whyNotConsumed(ctx, value, now)
	}

	res := &ConfirmResult{AdminUserID: m.ID, Role: r.String()}

	exchange, err := s.token(exchangeTokenBytes)
	if err == nil {
		var attached bool
		attached, err = s.nonces.AttachExchangeToken(ctx, value, tgID, exchange)
		if err == nil && !attached {
			err = errors.New("nonce not in attachable state")
		}
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("admin_user_id", m.ID).Msg("Exchange token not stored")
	} else {
		res.ExchangeToken = exchange
	}
	return res, nil
}

// whyNotConsumed re-reads a nonce that lost the compare-and-set.
func (s *TelegramAuthService) whyNotConsumed(ctx context.Context, value string, now time.Time) error {
	n, err := s.load(ctx, value)
	if err != nil {
		return err
	}
	if n.Used {
		return ErrNonceUsed
	}
	if n.Expired(now) {
		return ErrNonceExpired
	}
	return fmt.Errorf("%w: nonce not consumed", ErrDataSource)
}

// Wait reports whether the nonce has been confirmed and, if so, issues the
// session. An unconfirmed nonce is never an error.
func (s *TelegramAuthService) Wait(ctx context.Context, value string) (*WaitResult, error) {
	n, err := s.load(ctx, value)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if !n.Used {
		return &WaitResult{Ready: false, Expired: n.Expired(now)}, nil
	}
	if !now.Before(n.ExpiresAt.Add(s.opts.RedeemGrace)) {
		s.metrics.Handshake("wait", "expired")
		return nil, ErrNonceExpired
	}

	m, err := s.confirmedStaff(ctx, n)
	if err != nil {
		s.metrics.Handshake("wait", "rejected")
		return nil, err
	}
	r, err := activeStaff(m)
	if err != nil {
		s.metrics.Handshake("wait", "rejected")
		return nil, err
	}

	tgID := n.TgID
	if tgID == nil {
		tgID = m.TgID
	}
	token, issued, err := s.sessions.Issue(session.Payload{
		Subject: m.ID,
		Email:   m.Email,
		TgID:    tgID,
		Role:    r.String(),
		Kind:    session.KindTelegram,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Handshake("wait", "ready")
	s.metrics.SessionIssued(string(session.KindTelegram))

	out := &WaitResult{Ready: true, Token: token, Session: issued, User: &WaitUser{Role: r.String()}}
	if tgID != nil {
		out.User.TgID = *tgID
	}
	return out, nil
}

// confirmedStaff finds the staff row recorded at confirmation, by id first
// and then by Telegram ID.
func (s *TelegramAuthService) confirmedStaff(ctx context.Context, n *nonce.LoginNonce) (*staff.Membership, error) {
	if n.AdminUserID != nil && *n.AdminUserID != "" {
		m, err := s.staff.FindByID(ctx, *n.AdminUserID)
		if err == nil {
			return m, nil
		}
		if !errors.Is(err, staff.ErrNotFound) {
			return nil, lookupErr(err)
		}
	}
	if n.TgID == nil {
		s.logger.Error().Str("nonce", n.Nonce).Msg("Confirmed nonce has no staff reference")
		return nil, ErrForbidden
	}
	m, err := s.staff.FindByTelegramID(ctx, *n.TgID)
	if err != nil {
		return nil, lookupErr(err)
	}
	return m, nil
}

func (s *TelegramAuthService) load(ctx context.Context, value string) (*nonce.LoginNonce, error) {
	if value == "" {
		return nil, ErrNonceNotFound
	}
	n, err := s.nonces.Get(ctx, value)
	if err != nil {
		if errors.Is(err, nonce.ErrNotFound) {
			return nil, ErrNonceNotFound
		}
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}
	return n, nil
}

func (s *TelegramAuthService) token(size int) (string, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(s.random, b); err != nil {
		return "", fmt.Errorf("generating random token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// notify sends text in the background. Failures are only logged.
func (s *TelegramAuthService) notify(chatID int64, text string) {
	if s.notifier == nil || chatID == 0 || text == "" {
		return
	}
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := s.notifier.SendMessage(ctx, chatID, text); err != nil {
			s.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Bot notification failed")
		}
	}()
}

// Shutdown waits for pending notifications or until ctx is done.
func (s *TelegramAuthService) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func confirmMessage(err error) string {
	switch {
	case err == nil:
		return "Login confirmed. Return to the admin panel to continue."
	case errors.Is(err, ErrNonceNotFound):
		return "This login link is not valid. Start again from the admin panel."
	case errors.Is(err, ErrNonceUsed):
		return "This login link has already been used."
	case errors.Is(err, ErrNonceExpired):
		return "This login link has expired. Start again from the admin panel."
	case errors.Is(err, ErrForbidden):
		return "This Telegram account is not allowed to sign in to the admin panel."
	default:
		return "Login could not be confirmed right now. Please try again."
	}
}
