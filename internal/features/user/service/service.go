package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"miniurban-backend/internal/domain/role"
	"miniurban-backend/internal/domain/staff"
	"miniurban-backend/internal/domain/user"

	"github.com/rs/zerolog"
)

var (
	ErrUserNotFound = errors.New("user not found")
	// ErrDataSource means roles could not be determined because the staff
	// source failed everywhere.
	ErrDataSource = errors.New("identity data source unavailable")
)

// ProfileUpdate is a partial profile edit. Nil fields are left untouched.
type ProfileUpdate struct {
	Username *string `json:"username"`
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Language *string `json:"language"`
	Unit     *string `json:"unit"`
}

type UserService interface {
	// Resolve upserts the profile of a verified Telegram user and returns it
	// with the effective role set.
	Resolve(ctx context.Context, tgID int64, hints user.Hints) (*user.Profile, []role.Role, error)
	Roles(ctx context.Context, tgID int64) ([]role.Role, error)
	GetProfile(ctx context.Context, tgID int64) (*user.Profile, error)
	SaveProfile(ctx context.Context, tgID int64, upd ProfileUpdate) (*user.Profile, error)
	GetUser(ctx context.Context, tgID int64) (*user.Profile, []role.Role, error)
}

type userService struct {
	users  user.Repository
	staff  staff.Repository
	logger zerolog.Logger
}

func NewUserService(users user.Repository, staffRepo staff.Repository, logger zerolog.Logger) UserService {
	return &userService{
		users:  users,
		staff:  staffRepo,
		logger: logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) Resolve(ctx context.Context, tgID int64, hints user.Hints) (*user.Profile, []role.Role, error) {
	name := hints.DisplayName()
	in := &user.Profile{
		TgID:      tgID,
		Username:  optional(hints.Username),
		Name:      &name,
		Language:  optional(hints.LanguageCode),
		AvatarURL: optional(hints.PhotoURL),
	}

	profile, err := s.users.UpsertLogin(ctx, in)
	if err != nil {
		s.logger.Error().Err(err).Int64("tg_id", tgID).Msg("Failed to upsert profile")
		return nil, nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	roles, err := s.Roles(ctx, tgID)
	if err != nil {
		return nil, nil, err
	}
	return profile, roles, nil
}

// Roles collects active staff roles for tgID and unions in resident.
func (s *userService) Roles(ctx context.Context, tgID int64) ([]role.Role, error) {
	rows, err := s.staff.ActiveByTelegramID(ctx, tgID)
	switch {
	case errors.Is(err, staff.ErrNotFound):
		return role.Effective(nil), nil
	case err != nil:
		s.logger.Error().Err(err).Int64("tg_id", tgID).Msg("Staff lookup failed in every schema")
		return nil, fmt.Errorf("%w: %w", ErrDataSource, err)
	}

	raw := make([]string, 0, len(rows))
	for _, m := range rows {
		if m.IsActive {
			raw = append(raw, m.Role)
		}
	}
	return role.Effective(raw), nil
}

// GetProfile returns the stored profile or an empty one for unknown users.
func (s *userService) GetProfile(ctx context.Context, tgID int64) (*user.Profile, error) {
	p, err := s.users.GetByID(ctx, tgID)
	if errors.Is(err, user.ErrNotFound) {
		return &user.Profile{TgID: tgID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *userService) SaveProfile(ctx context.Context, tgID int64, upd ProfileUpdate) (*user.Profile, error) {
	p := &user.Profile{
		TgID:     tgID,
		Username: trimmed(upd.Username),
		Name:     trimmed(upd.Name),
		Email:    trimmed(upd.Email),
		Phone:    trimmed(upd.Phone),
		Unit:     trimmed(upd.Unit),
	}
	if upd.Language != nil {
		p.Language = optional(user.NormalizeLanguage(*upd.Language))
	}
	return s.users.Merge(ctx, p)
}

// GetUser is the staff-facing lookup: the stored profile plus its roles.
func (s *userService) GetUser(ctx context.Context, tgID int64) (*user.Profile, []role.Role, error) {
	p, err := s.users.GetByID(ctx, tgID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	roles, err := s.Roles(ctx, tgID)
	if err != nil {
		return nil, nil, err
	}
	return p, roles, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// trimmed keeps an empty result so Merge clears the field.
func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
