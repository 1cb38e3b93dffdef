// Package identity talks to the external identity provider that owns staff
// passwords. Only the password grant is used.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrInvalidCredentials  = errors.New("identity: invalid credentials")
	ErrProviderUnavailable = errors.New("identity: provider unavailable")
	ErrNotConfigured       = errors.New("identity: provider is not configured")
)

// Account is the provider-side identity of a staff member.
type Account struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	User *Account `json:"user"`
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     zerolog.Logger
}

func NewClient(baseURL, anonKey string, timeout time.Duration, logger zerolog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		logger:     logger.With().Str("component", "identity").Logger(),
	}
}

// PasswordLogin checks email and password with the provider and returns the
// provider account. Any non-200 answer below 500 is treated as bad
// credentials; transport failures and 5xx are ErrProviderUnavailable.
func (c *Client) PasswordLogin(ctx context.Context, email, password string) (*Account, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return nil, ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.baseURL + "/auth/v1/token?grant_type=password"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Msg("Identity provider request failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Error().Int("status", resp.StatusCode).Msg("Identity provider error")
		return nil, fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidCredentials
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrProviderUnavailable, err)
	}
	if out.User == nil || out.User.ID == "" {
		return nil, ErrInvalidCredentials
	}
	if out.User.Email == "" {
		out.User.Email = email
	}
	return out.User, nil
}
