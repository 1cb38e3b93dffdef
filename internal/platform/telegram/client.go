package telegram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIURL = "https://api.telegram.org"

// ErrUnavailable wraps transport failures and timeouts.
var ErrUnavailable = errors.New("telegram api unavailable")

// APIError is an ok=false answer from the Bot API.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

type User struct {
	ID        int64  `json:"id"`
	IsBot     bool   `json:"is_bot"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type response[T any] struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code,omitempty"`
	Description string `json:"description,omitempty"`
	Result      T      `json:"result"`
}

type Client struct {
	httpClient *http.Client
	apiURL     string
	token      string
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewClient builds a Bot API client. timeout bounds every call except long
// polling, which adds the poll duration on top.
func NewClient(apiURL, token string, timeout time.Duration, logger zerolog.Logger) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{},
		apiURL:     strings.TrimRight(apiURL, "/"),
		token:      token,
		timeout:    timeout,
		logger:     logger.With().Str("component", "telegram").Logger(),
	}
}

// SendMessage sends a plain text message to chatID.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	params := url.Values{
		"chat_id": {strconv.FormatInt(chatID, 10)},
		"text":    {text},
	}

	var resp response[Message]
	if err := c.makeRequest(ctx, http.MethodPost, "sendMessage", params, &resp, c.timeout); err != nil {
		c.logger.Warn().Err(err).Int64("chat_id", chatID).Msg("Failed to send message")
		return err
	}
	if !resp.Ok {
		return &APIError{Code: resp.ErrorCode, Description: resp.Description}
	}

	c.logger.Debug().Int64("chat_id", chatID).Msg("Message sent")
	return nil
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, poll time.Duration) ([]Update, error) {
	params := url.Values{
		"offset":          {strconv.FormatInt(offset, 10)},
		"timeout":         {strconv.Itoa(int(poll / time.Second))},
		"allowed_updates": {`["message"]`},
	}

	var resp response[[]Update]
	if err := c.makeRequest(ctx, http.MethodGet, "getUpdates", params, &resp, c.timeout+poll); err != nil {
		return nil, err
	}
	if !resp.Ok {
		return nil, &APIError{Code: resp.ErrorCode, Description: resp.Description}
	}
	return resp.Result, nil
}

// GetMe returns the bot account, used as a startup token check.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var resp response[User]
	if err := c.makeRequest(ctx, http.MethodGet, "getMe", nil, &resp, c.timeout); err != nil {
		return nil, err
	}
	if !resp.Ok {
		return nil, &APIError{Code: resp.ErrorCode, Description: resp.Description}
	}
	return &resp.Result, nil
}

func (c *Client) makeRequest(ctx context.Context, method, apiMethod string, data url.Values, result interface{}, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, apiMethod)

	var req *http.Request
	var err error
	if method == http.MethodPost {
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(data.Encode()))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		if len(data) > 0 {
			endpoint = endpoint + "?" + data.Encode()
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// The URL embeds the token; never surface it.
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, apiMethod, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read %s: %v", ErrUnavailable, apiMethod, err)
	}

	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to parse %s response (status %d): %w", apiMethod, resp.StatusCode, err)
	}
	return nil
}
