package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "ops@example.org", in["email"])

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPasswordLogin_OK(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"access_token":"x","user":{"id":"8d1c","email":"ops@example.org"}}`)
	c := NewClient(srv.URL, "anon", time.Second, zerolog.Nop())

	acc, err := c.PasswordLogin(context.Background(), "ops@example.org", "pw")
	require.NoError(t, err)
	assert.Equal(t, "8d1c", acc.ID)
	assert.Equal(t, "ops@example.org", acc.Email)
}

func TestPasswordLogin_BadCredentials(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, `{"error":"invalid_grant"}`)
	c := NewClient(srv.URL, "anon", time.Second, zerolog.Nop())

	_, err := c.PasswordLogin(context.Background(), "ops@example.org", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordLogin_ProviderDown(t *testing.T) {
	srv := newTestServer(t, http.StatusBadGateway, `upstream`)
	c := NewClient(srv.URL, "anon", time.Second, zerolog.Nop())

	_, err := c.PasswordLogin(context.Background(), "ops@example.org", "pw")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestPasswordLogin_MissingUser(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{"access_token":"x"}`)
	c := NewClient(srv.URL, "anon", time.Second, zerolog.Nop())

	_, err := c.PasswordLogin(context.Background(), "ops@example.org", "pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordLogin_NotConfigured(t *testing.T) {
	c := NewClient("", "", time.Second, zerolog.Nop())
	_, err := c.PasswordLogin(context.Background(), "ops@example.org", "pw")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
