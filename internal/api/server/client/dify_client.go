package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bz888/cafeteira/internal/logger"
)

const (
	ResponseModeBlocking = "blocking"
	DefaultUser          = "user"
)

// DifyClient talks to a Dify chat application.
type DifyClient struct {
	Client
	apiKey string
}

type AssistantInterface interface {
	Chat(ctx context.Context, req *ChatMessageRequest) (*ChatMessageResponse, error)
}

// ChatMessageRequest is the body of POST /chat-messages.
type ChatMessageRequest struct {
	Inputs         map[string]any `json:"inputs"`
	Query          string         `json:"query"`
	ResponseMode   string         `json:"response_mode"`
	ConversationID string         `json:"conversation_id,omitempty"`
	User           string         `json:"user"`
}

// ChatMessageResponse is a blocking-mode reply.
type ChatMessageResponse struct {
	Event          string          `json:"event,omitempty"`
	TaskID         string          `json:"task_id,omitempty"`
	MessageID      string          `json:"message_id,omitempty"`
	ConversationID string          `json:"conversation_id,omitempty"`
	Mode           string          `json:"mode,omitempty"`
	Answer         string          `json:"answer"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      int64           `json:"created_at,omitempty"`
}

// NewDifyClient creates a client for baseURL (e.g. https://api.dify.ai/v1).
func NewDifyClient(baseURL, apiKey string) (*DifyClient, error) {
	c, err := NewClient(ClientConfig{BaseURL: baseURL, ChatPath: "chat-messages"})
	if err != nil {
		return nil, fmt.Errorf("dify client: %w", err)
	}
	return &DifyClient{Client: *c, apiKey: apiKey}, nil
}

func (c *DifyClient) Chat(ctx context.Context, req *ChatMessageRequest) (*ChatMessageResponse, error) {
	localLogger := logger.NewLogger("dify chat")
	if req.Inputs == nil {
		req.Inputs = map[string]any{}
	}
	if req.ResponseMode == "" {
		req.ResponseMode = ResponseModeBlocking
	}
	if req.User == "" {
		req.User = DefaultUser
	}

	bts, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.GetChatURL(), bytes.NewReader(bts))
	if err != nil {
		localLogger.Error("Failed to build dify request: ", err)
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.http.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		localLogger.Error("Dify returned ", response.Status, ": ", string(body))
		return nil, errors.New("dify: " + response.Status + ": " + strings.TrimSpace(string(body)))
	}

	var resp ChatMessageResponse
	if err := json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("dify: decode response: %w", err)
	}
	return &resp, nil
}
