package guard

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"miniurban-backend/internal/features/adminauth/session"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessions(t *testing.T) *session.Manager {
	t.Helper()
	m, err := session.NewManager(session.Options{
		Secret: "0123456789abcdef0123456789abcdef", CookieName: "uv_admin", TTL: time.Hour, Hardened: true,
	})
	require.NoError(t, err)
	return m
}

func requestWith(t *testing.T, sessions *session.Manager, role string) *http.Request {
	t.Helper()
	token, _, err := sessions.Issue(session.Payload{Subject: "staff-1", Role: role, Kind: session.KindEmail})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/admin/api/whoami", nil)
	r.AddCookie(&http.Cookie{Name: "uv_admin", Value: token})
	return r
}

func TestGuard_Hardened(t *testing.T) {
	sessions := newSessions(t)
	g := New(sessions, false, zerolog.Nop(), nil)

	_, err := g.Authorize(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.ErrorIs(t, err, session.ErrNoSession)

	bad := httptest.NewRequest(http.MethodGet, "/", nil)
	bad.AddCookie(&http.Cookie{Name: "uv_admin", Value: "garbage"})
	_, err = g.Authorize(bad)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = g.Authorize(requestWith(t, sessions, "resident"))
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = g.Authorize(requestWith(t, sessions, ""))
	assert.ErrorIs(t, err, ErrForbidden)

	for _, r := range []string{"admin", "manager", "operator"} {
		p, err := g.Authorize(requestWith(t, sessions, r))
		require.NoError(t, err)
		assert.Equal(t, r, p.Role)
		assert.Equal(t, "staff-1", p.Subject)
	}

	for _, r := range []string{"owner", "Admin", " manager"} {
		_, err := g.Authorize(requestWith(t, sessions, r))
		assert.ErrorIs(t, err, ErrForbidden, r)
	}
}

func TestGuard_Relaxed(t *testing.T) {
	sessions := newSessions(t)
	g := New(sessions, true, zerolog.Nop(), nil)

	p, err := g.Authorize(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, DevSubject, p.Subject)
	assert.Equal(t, "admin", p.Role)
	assert.Equal(t, session.KindDev, p.Kind)

	p, err = g.Authorize(requestWith(t, sessions, "operator"))
	require.NoError(t, err)
	assert.Equal(t, "staff-1", p.Subject)
	assert.Equal(t, "operator", p.Role)

	p, err = g.Authorize(requestWith(t, sessions, "resident"))
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Role)
}
