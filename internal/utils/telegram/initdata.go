package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	initdata "github.com/telegram-mini-apps/init-data-golang"
)

const (
	webAppDataKey = "WebAppData"
	hashKey       = "hash"
	authDateKey   = "auth_date"

	// DefaultInitDataMaxAge is used when the caller has no configured TTL.
	DefaultInitDataMaxAge = 24 * time.Hour
)

var (
	ErrMalformedInput   = errors.New("init data: malformed input")
	ErrInvalidSignature = errors.New("init data: invalid signature")
	ErrExpired          = errors.New("init data: expired")
	ErrNoBotToken       = errors.New("init data: bot token is not configured")
)

// WebAppUser is the authenticated Telegram user embedded in init data.
type WebAppUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username,omitempty"`
	FirstName    string `json:"first_name,omitempty"`
	LastName     string `json:"last_name,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// InitData is the verified launch payload. It lives for one request.
type InitData struct {
	Raw      map[string]string
	User     *WebAppUser
	AuthDate time.Time
}

type pair struct {
	key   string
	value string
}

// VerifyInitData checks the signature and age of a raw init data query string.
// maxAge <= 0 disables the age check.
func VerifyInitData(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	return VerifyInitDataAt(raw, botToken, maxAge, time.Now())
}

// VerifyInitDataAt is VerifyInitData with an explicit clock.
func VerifyInitDataAt(raw, botToken string, maxAge time.Duration, now time.Time) (*InitData, error) {
	if botToken == "" {
		return nil, ErrNoBotToken
	}

	pairs, err := parsePairs(raw)
	if err != nil {
		return nil, err
	}

	var received string
	var hasHash bool
	signed := pairs[:0]
	for _, p := range pairs {
		if p.key == hashKey {
			received, hasHash = p.value, true
			continue
		}
		signed = append(signed, p)
	}
	if !hasHash || received == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrMalformedInput)
	}

	expected := sign(signed, botToken)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(received))) != 1 {
		return nil, ErrInvalidSignature
	}

	data := &InitData{Raw: make(map[string]string, len(signed))}
	for _, p := range signed {
		data.Raw[p.key] = p.value
	}

	if v, ok := data.Raw[authDateKey]; ok {
		ts, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: bad auth_date", ErrMalformedInput)
		}
		data.AuthDate = time.Unix(ts, 0)
		if maxAge > 0 && now.Sub(data.AuthDate) > maxAge {
			return nil, ErrExpired
		}
	}

	data.User = parseUser(raw)
	return data, nil
}

// RequireUser returns the embedded user or ErrMalformedInput when there is
// no usable numeric id.
func (d *InitData) RequireUser() (*WebAppUser, error) {
	if d == nil || d.User == nil || d.User.ID == 0 {
		return nil, fmt.Errorf("%w: user missing", ErrMalformedInput)
	}
	return d.User, nil
}

// SignInitData returns the hex hash Telegram would attach to values.
func SignInitData(values map[string]string, botToken string) string {
	pairs := make([]pair, 0, len(values))
	for k, v := range values {
		if k == hashKey {
			continue
		}
		pairs = append(pairs, pair{key: k, value: v})
	}
	return sign(pairs, botToken)
}

// EncodeInitData renders values as a signed init data query string with the
// hash appended last.
func EncodeInitData(values map[string]string, botToken string) string {
	q := url.Values{}
	for k, v := range values {
		if k != hashKey {
			q.Set(k, v)
		}
	}
	return q.Encode() + "&" + hashKey + "=" + SignInitData(values, botToken)
}

func sign(pairs []pair, botToken string) string {
	sorted := make([]pair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].key < sorted[j].key })

	lines := make([]string, len(sorted))
	for i, p := range sorted {
		lines[i] = p.key + "=" + p.value
	}

	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

// parsePairs splits a query string into pairs, decoding each part once.
func parsePairs(raw string) ([]pair, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty init data", ErrMalformedInput)
	}

	var pairs []pair
	for _, part := range strings.Split(raw, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}
		pairs = append(pairs, pair{key: key, value: value})
	}
	return pairs, nil
}

// parseUser extracts the user object. Failures are not fatal here; callers
// that need an identity use RequireUser.
func parseUser(raw string) *WebAppUser {
	parsed, err := initdata.Parse(raw)
	if err != nil || parsed.User.ID == 0 {
		return nil
	}
	return &WebAppUser{
		ID:           parsed.User.ID,
		Username:     parsed.User.Username,
		FirstName:    parsed.User.FirstName,
		LastName:     parsed.User.LastName,
		LanguageCode: parsed.User.LanguageCode,
		PhotoURL:     parsed.User.PhotoURL,
		IsPremium:    parsed.User.IsPremium,
	}
}
