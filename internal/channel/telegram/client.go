package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/katapios/lazybones/internal/channel"
)

// defaultBaseURL is the Bot API root. Overridable for tests.
const defaultBaseURL = "https://api.telegram.org"

// Client is a thin HTTP client for the Telegram Bot API. It handles
// token-in-path addressing, JSON marshaling, and the ok/description
// response envelope.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new Bot API client for the given bot token.
func NewClient(token string) *Client {
	return &Client{
		baseURL: defaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewClientWithBaseURL creates a client against a non-default API root.
func NewClientWithBaseURL(token, baseURL string) *Client {
	c := NewClient(token)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// GetMe verifies the bot token and returns the bot's identity.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var resp getMeResponse
	if err := c.call(ctx, "getMe", nil, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.apiResponse); err != nil {
		return nil, err
	}
	return &resp.Result, nil
}

// GetUpdates fetches updates with update_id >= offset, in ascending order.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error) {
	var resp getUpdatesResponse
	req := getUpdatesRequest{
		Offset:         offset,
		Limit:          limit,
		AllowedUpdates: []string{"message"},
	}
	if err := c.call(ctx, "getUpdates", req, &resp); err != nil {
		return nil, err
	}
	if err := checkEnvelope(resp.apiResponse); err != nil {
		return nil, err
	}
	return resp.Result, nil
}

// SendMessage delivers text to the given chat.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	var resp apiResponse
	req := sendMessageRequest{ChatID: chatID, Text: text}
	if err := c.call(ctx, "sendMessage", req, &resp); err != nil {
		return err
	}
	return checkEnvelope(resp)
}

// FileURL resolves a file id to its download URL.
func (c *Client) FileURL(ctx context.Context, fileID string) (string, error) {
	var resp getFileResponse
	if err := c.call(ctx, "getFile", getFileRequest{FileID: fileID}, &resp); err != nil {
		return "", err
	}
	if err := checkEnvelope(resp.apiResponse); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/file/bot%s/%s", c.baseURL, c.token, resp.Result.FilePath), nil
}

// call performs one Bot API method invocation.
func (c *Client) call(
	ctx context.Context,
	method string,
	body interface{},
	result interface{},
) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", method, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &channel.UnavailableError{
			Channel: channel.TypeTelegram,
			Err:     fmt.Errorf("executing %s: %w", method, err),
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s response: %w", method, err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return &channel.AuthError{
			Channel: channel.TypeTelegram,
			Message: fmt.Sprintf("bot token rejected (%d) on %s", resp.StatusCode, method),
		}
	}
	if resp.StatusCode >= 500 {
		return &channel.UnavailableError{
			Channel: channel.TypeTelegram,
			Err:     fmt.Errorf("status %d on %s", resp.StatusCode, method),
		}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling %s response: %w", method, err)
	}
	return nil
}

// checkEnvelope turns an ok=false Bot API envelope into an error.
func checkEnvelope(resp apiResponse) error {
	if resp.OK {
		return nil
	}
	if resp.ErrorCode == http.StatusUnauthorized || resp.ErrorCode == http.StatusForbidden {
		return &channel.AuthError{
			Channel: channel.TypeTelegram,
			Message: resp.Description,
		}
	}
	return fmt.Errorf("telegram API error (%d): %s", resp.ErrorCode, resp.Description)
}
