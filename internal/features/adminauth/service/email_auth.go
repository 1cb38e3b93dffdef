package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"miniurban-backend/internal/common/metrics"
	"miniurban-backend/internal/domain/staff"
	"miniurban-backend/internal/features/adminauth/session"
	"miniurban-backend/internal/platform/identity"

	"github.com/rs/zerolog"
)

// PasswordVerifier checks staff credentials with the identity provider.
type PasswordVerifier interface {
	PasswordLogin(ctx context.Context, email, password string) (*identity.Account, error)
}

type LoginResult struct {
	Token   string
	Session *session.Payload
}

type EmailAuthService struct {
	verifier PasswordVerifier
	staff    staff.Repository
	sessions *session.Manager
	logger   zerolog.Logger
	metrics  *metrics.Metrics
}

func NewEmailAuthService(verifier PasswordVerifier, staffRepo staff.Repository, sessions *session.Manager, logger zerolog.Logger, m *metrics.Metrics) *EmailAuthService {
	return &EmailAuthService{
		verifier: verifier,
		staff:    staffRepo,
		sessions: sessions,
		logger:   logger.With().Str("component", "email_auth").Logger(),
		metrics:  m,
	}
}

// Login verifies the password with the provider, then requires an active
// staff row for the email.
func (s *EmailAuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	acc, err := s.verifier.PasswordLogin(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrInvalidCredentials):
			return nil, ErrInvalidCredentials
		case errors.Is(err, identity.ErrNotConfigured):
			return nil, fmt.Errorf("%w: %w", ErrNotConfigured, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
		}
	}

	m, err := s.staff.FindByEmail(ctx, email)
	if err != nil {
		err = lookupErr(err)
		if errors.Is(err, ErrForbidden) {
			s.logger.Warn().Str("account_id", acc.ID).Msg("Authenticated account has no staff record")
		}
		return nil, err
	}
	r, err := activeStaff(m)
	if err != nil {
		s.logger.Warn().Str("staff_id", m.ID).Msg("Staff record inactive or without staff role")
		return nil, err
	}

	token, issued, err := s.sessions.Issue(session.Payload{
		Subject: acc.ID,
		Email:   &email,
		TgID:    m.TgID,
		Role:    r.String(),
		Kind:    session.KindEmail,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.SessionIssued(string(session.KindEmail))
	s.logger.Info().Str("staff_id", m.ID).Str("role", r.String()).Msg("Email session issued")
	return &LoginResult{Token: token, Session: issued}, nil
}
