package models

import "time"

// Profile is the public view of a resident profile
// @Description Resident profile
type Profile struct {
	TgID      int64      `json:"tg_id" example:"123456789"`
	Username  string     `json:"username" example:"ivanp"`
	Name      string     `json:"name" example:"Ivan Petrov"`
	Email     string     `json:"email" example:"ivan@example.org"`
	Phone     string     `json:"phone" example:"+85512345678"`
	Language  string     `json:"language" example:"EN" enums:"EN,RU,KM,ZH"`
	Unit      string     `json:"unit" example:"B-1204"`
	AvatarURL string     `json:"avatar_url" example:"https://t.me/i/userpic/320/ivanp.jpg"`
	CreatedAt *time.Time `json:"created_at,omitempty" example:"2026-03-15T14:30:00Z"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" example:"2026-03-15T14:30:00Z"`
}

// MeResponse is returned after a Mini App login
// @Description Resolved identity with effective roles
type MeResponse struct {
	User  Profile  `json:"user"`
	Roles []string `json:"roles" example:"manager"`
}

// ProfileResponse wraps a single profile
type ProfileResponse struct {
	Profile Profile `json:"profile"`
}

// UserResponse is the staff-facing user view
type UserResponse struct {
	User  Profile  `json:"user"`
	Roles []string `json:"roles" example:"resident"`
}
