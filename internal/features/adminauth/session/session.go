// Package session issues and reads the signed admin session token carried in
// an httpOnly cookie. Nothing is stored server-side.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrNoSession      = errors.New("no session")
	ErrSessionExpired = errors.New("session expired")
	ErrSessionInvalid = errors.New("invalid session")
)

// Kind records how a session was obtained.
type Kind string

const (
	KindEmail    Kind = "email"
	KindTelegram Kind = "telegram"
	KindDev      Kind = "dev"
)

// Payload is the decoded session. Role is kept as issued; callers decide
// whether it is acceptable.
type Payload struct {
	Subject   string    `json:"sub"`
	Email     *string   `json:"email"`
	TgID      *int64    `json:"tg_id"`
	Role      string    `json:"role"`
	Kind      Kind      `json:"kind"`
	IssuedAt  time.Time `json:"-"`
	ExpiresAt time.Time `json:"-"`
}

type claims struct {
	jwt.RegisteredClaims
	Email *string `json:"email,omitempty"`
	TgID  *int64  `json:"tg_id,omitempty"`
	Role  string  `json:"role"`
	Kind  Kind    `json:"kind"`
}

type Options struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	// Hardened selects Secure + SameSite=Strict cookies. Otherwise cookies
	// are sent over plain HTTP with SameSite=Lax.
	Hardened bool
}

type Manager struct {
	secret     []byte
	cookieName string
	ttl        time.Duration
	hardened   bool
	now        func() time.Time
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Secret == "" {
		return nil, errors.New("session: empty signing secret")
	}
	if opts.CookieName == "" {
		return nil, errors.New("session: empty cookie name")
	}
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	return &Manager{
		secret:     []byte(opts.Secret),
		cookieName: opts.CookieName,
		ttl:        opts.TTL,
		hardened:   opts.Hardened,
		now:        time.Now,
	}, nil
}

func (m *Manager) CookieName() string {
	return m.cookieName
}

// Issue signs p with a fresh iat, exp and jti. The returned payload carries
// the issued timestamps.
func (m *Manager) Issue(p Payload) (string, *Payload, error) {
	now := m.now()
	exp := now.Add(m.ttl)

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
		Email: p.Email,
		TgID:  p.TgID,
		Role:  p.Role,
		Kind:  p.Kind,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("signing session token: %w", err)
	}

	out := p
	out.IssuedAt = c.IssuedAt.Time
	out.ExpiresAt = c.ExpiresAt.Time
	return signed, &out, nil
}

// Read verifies token and returns its payload.
func (m *Manager) Read(token string) (*Payload, error) {
	if token == "" {
		return nil, ErrNoSession
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(_ *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrSessionInvalid, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return nil, ErrSessionInvalid
	}

	p := &Payload{
		Subject: c.Subject,
		Email:   c.Email,
		TgID:    c.TgID,
		Role:    c.Role,
		Kind:    c.Kind,
	}
	if c.IssuedAt != nil {
		p.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		p.ExpiresAt = c.ExpiresAt.Time
	}
	return p, nil
}

// FromRequest reads the session cookie of r.
func (m *Manager) FromRequest(r *http.Request) (*Payload, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, ErrNoSession
	}
	return m.Read(cookie.Value)
}

// SetCookie writes token as the session cookie.
func (m *Manager) SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, m.cookie(token, int(m.ttl/time.Second)))
}

// ClearCookie deletes the session cookie. No server state is touched.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, m.cookie("", -1))
}

// IssueCookie issues a token for p and sets it on w.
func (m *Manager) IssueCookie(w http.ResponseWriter, p Payload) (*Payload, error) {
	token, issued, err := m.Issue(p)
	if err != nil {
		return nil, err
	}
	m.SetCookie(w, token)
	return issued, nil
}

func (m *Manager) cookie(value string, maxAge int) *http.Cookie {
	c := &http.Cookie{
		Name:     m.cookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   m.hardened,
		SameSite: http.SameSiteLaxMode,
	}
	if m.hardened {
		c.SameSite = http.SameSiteStrictMode
	}
	return c
}
