package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/bz888/cafeteira/internal/logger"
)

// ErrRequestFailed is the single failure category of the client. Network
// errors, timeouts, non-2xx replies and undecodable bodies all wrap it.
var ErrRequestFailed = errors.New("request failed")

// ChatRequest is the body of POST /chat. A nil ConversationID is sent as
// JSON null.
type ChatRequest struct {
	ConversationID *string `json:"conversation_id"`
	Message        string  `json:"message"`
}

// ChatResponse is the part of the /chat reply the widget reads.
type ChatResponse struct {
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// StatusResponse is the part of the /status reply the widget reads. Any
// other fields are ignored, and a field that is not a JSON string decodes
// as empty.
type StatusResponse struct {
	LastActivity string `json:"last_activity"`
	Status       string `json:"status,omitempty"`
}

// UnmarshalJSON accepts whatever the device last published for each field.
func (s *StatusResponse) UnmarshalJSON(data []byte) error {
	var raw struct {
		LastActivity json.RawMessage `json:"last_activity"`
		Status       json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.LastActivity = rawString(raw.LastActivity)
	s.Status = rawString(raw.Status)
	return nil
}

func rawString(raw json.RawMessage) string {
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	return v
}

// Client talks to the chat backend.
type Client struct {
	http      *http.Client
	chatUrl   *url.URL
	statusUrl *url.URL
	log       *logger.Logger
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	BaseURL    string
	ChatPath   string
	StatusPath string
	// HTTPClient defaults to a client without a timeout; callers bound
	// requests through the context instead.
	HTTPClient *http.Client
}

// NewClient creates a backend client with configurable base URL and endpoints
func NewClient(config ClientConfig) (*Client, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if config.ChatPath == "" {
		config.ChatPath = "/chat"
	}
	if config.StatusPath == "" {
		config.StatusPath = "/status"
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:      httpClient,
		chatUrl:   baseURL.ResolveReference(&url.URL{Path: config.ChatPath}),
		statusUrl: baseURL.ResolveReference(&url.URL{Path: config.StatusPath}),
		log:       logger.NewLogger("api client"),
	}, nil
}

func (c *Client) GetChatURL() string {
	return c.chatUrl.String()
}

func (c *Client) GetStatusURL() string {
	return c.statusUrl.String()
}

// Chat posts one user message and returns the decoded reply.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.do(ctx, http.MethodPost, c.chatUrl, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status fetches the session status.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.do(ctx, http.MethodGet, c.statusUrl, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method string, u *url.URL, data any, out any) error {
	var body io.Reader
	if data != nil {
		bts, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("%w: encode %s body: %w", ErrRequestFailed, u.Path, err)
		}
		body = bytes.NewReader(bts)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, u.Path, err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrRequestFailed, method, u.Path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.Error("Failed to close response body: ", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s: %s", ErrRequestFailed, method, u.Path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", ErrRequestFailed, u.Path, err)
	}
	return nil
}
