package user

import (
	"strings"
	"time"
)

// Profile is a resident profile keyed by the Telegram user ID.
// Optional columns are pointers so that a nil value means "keep existing".
type Profile struct {
	TgID      int64     `json:"tg_id"`
	Username  *string   `json:"username"`
	Name      *string   `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	Language  *string   `json:"language"`
	Unit      *string   `json:"unit"`
	AvatarURL *string   `json:"avatar_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hints are identity fields taken from verified Telegram init data.
type Hints struct {
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	PhotoURL     string
}

// DisplayName builds "First Last", falling back to the username and then "User".
func (h Hints) DisplayName() string {
	name := h.FirstName
	if name == "" {
		name = h.Username
	}
	if name == "" {
		name = "User"
	}
	if h.LastName != "" {
		name = name + " " + h.LastName
	}
	return name
}

var supportedLanguages = map[string]bool{"EN": true, "RU": true, "KM": true, "ZH": true}

// NormalizeLanguage maps a profile language to one of EN, RU, KM, ZH.
// Unknown values become EN; empty input stays empty.
func NormalizeLanguage(raw string) string {
	lang := strings.ToUpper(strings.TrimSpace(raw))
	if lang == "" {
		return ""
	}
	if !supportedLanguages[lang] {
		return "EN"
	}
	return lang
}
