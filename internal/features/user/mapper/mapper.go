package mapper

import (
	"strings"

	"miniurban-backend/internal/common/validation"
	"miniurban-backend/internal/domain/role"
	"miniurban-backend/internal/domain/user"
	"miniurban-backend/internal/features/user/models"
	"miniurban-backend/internal/features/user/service"
)

// ToProfile maps a stored profile to its public view.
func ToProfile(p *user.Profile) models.Profile {
	out := models.Profile{
		TgID:      p.TgID,
		Username:  deref(p.Username),
		Name:      deref(p.Name),
		Email:     deref(p.Email),
		Phone:     deref(p.Phone),
		Language:  deref(p.Language),
		Unit:      deref(p.Unit),
		AvatarURL: deref(p.AvatarURL),
	}
	if !p.CreatedAt.IsZero() {
		created := p.CreatedAt
		out.CreatedAt = &created
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

func ToMeResponse(p *user.Profile, roles []role.Role) *models.MeResponse {
	return &models.MeResponse{User: ToProfile(p), Roles: role.Strings(roles)}
}

func ToUserResponse(p *user.Profile, roles []role.Role) *models.UserResponse {
	return &models.UserResponse{User: ToProfile(p), Roles: role.Strings(roles)}
}

// ToProfileUpdate maps the request body onto a service update.
func ToProfileUpdate(req *models.ProfileRequest) service.ProfileUpdate {
	return service.ProfileUpdate{
		Username: strippedUsername(req.Username),
		Name:     req.Name,
		Email:    req.Email,
		Phone:    normalizedPhone(req.Phone),
		Language: req.Language,
		Unit:     req.Unit,
	}
}

func strippedUsername(u *string) *string {
	if u == nil {
		return nil
	}
	v := strings.TrimPrefix(strings.TrimSpace(*u), "@")
	return &v
}

func normalizedPhone(p *string) *string {
	if p == nil {
		return nil
	}
	v := validation.NormalizePhone(*p)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
