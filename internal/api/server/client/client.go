package client

import (
	"net/http"
	"net/url"
)

// Client represents a client for an upstream API
type Client struct {
	http    *http.Client
	chatUrl *url.URL
}

// ClientConfig holds the configuration for the client
type ClientConfig struct {
	BaseURL    string
	ChatPath   string
	HTTPClient *http.Client
}

// NewClient creates a new API client. ChatPath is joined onto the base URL
// path, so a base of https://api.dify.ai/v1 keeps its /v1 prefix.
func NewClient(config ClientConfig) (*Client, error) {
	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		http:    httpClient,
		chatUrl: baseURL.JoinPath(config.ChatPath),
	}, nil
}

func (c *Client) GetChatURL() string {
	return c.chatUrl.String()
}
