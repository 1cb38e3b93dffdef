package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"miniurban-backend/internal/domain/user"

	_ "github.com/lib/pq"
)

const profileColumns = `tg_id, username, name, email, phone, language, unit, avatar_url, created_at, updated_at`

type postgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) user.Repository {
	return &postgresRepository{db: db}
}

// UpsertLogin records a Mini App launch for the profile.
func (r *postgresRepository) UpsertLogin(ctx context.Context, p *user.Profile) (*user.Profile, error) {
	query := `
		INSERT INTO users (tg_id, username, name, language, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tg_id) DO UPDATE SET
			username   = EXCLUDED.username,
			name       = COALESCE(EXCLUDED.name, users.name),
			language   = COALESCE(EXCLUDED.language, users.language),
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			updated_at = NOW()
		RETURNING ` + profileColumns

	row := r.db.QueryRowContext(ctx, query, p.TgID, p.Username, p.Name, p.Language, p.AvatarURL)
	out, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return out, nil
}

// Merge applies a partial profile edit. A nil field keeps the stored value,
// an empty string clears it.
func (r *postgresRepository) Merge(ctx context.Context, p *user.Profile) (*user.Profile, error) {
	query := `
		INSERT INTO users (tg_id, username, name, email, phone, language, unit, avatar_url, created_at, updated_at)
		VALUES ($1, NULLIF($2::text, ''), NULLIF($3::text, ''), NULLIF($4::text, ''), NULLIF($5::text, ''),
			$6, NULLIF($7::text, ''), $8, NOW(), NOW())
		ON CONFLICT (tg_id) DO UPDATE SET
			username   = CASE WHEN $2::text IS NULL THEN users.username ELSE EXCLUDED.username END,
			name       = CASE WHEN $3::text IS NULL THEN users.name ELSE EXCLUDED.name END,
			email      = CASE WHEN $4::text IS NULL THEN users.email ELSE EXCLUDED.email END,
			phone      = CASE WHEN $5::text IS NULL THEN users.phone ELSE EXCLUDED.phone END,
			language   = COALESCE(EXCLUDED.language, users.language),
			unit       = CASE WHEN $7::text IS NULL THEN users.unit ELSE EXCLUDED.unit END,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url),
			updated_at = NOW()
		RETURNING ` + profileColumns

	row := r.db.QueryRowContext(ctx, query,
		p.TgID, p.Username, p.Name, p.Email, p.Phone, p.Language, p.Unit, p.AvatarURL)
	out, err := scanProfile(row)
	if err != nil {
		return nil, fmt.Errorf("failed to merge user: %w", err)
	}
	return out, nil
}

// GetByID returns the profile for a Telegram user.
func (r *postgresRepository) GetByID(ctx context.Context, tgID int64) (*user.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM users WHERE tg_id = $1`

	out, err := scanProfile(r.db.QueryRowContext(ctx, query, tgID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return out, nil
}

func scanProfile(row *sql.Row) (*user.Profile, error) {
	var (
		p                                                   user.Profile
		username, name, email, phone, lang, unit, avatarURL sql.NullString
	)
	if err := row.Scan(&p.TgID, &username, &name, &email, &phone, &lang, &unit, &avatarURL,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Username = nullString(username)
	p.Name = nullString(name)
	p.Email = nullString(email)
	p.Phone = nullString(phone)
	p.Language = nullString(lang)
	p.Unit = nullString(unit)
	p.AvatarURL = nullString(avatarURL)
	return &p, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
