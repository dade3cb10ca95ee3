package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifyChatURLKeepsVersionPrefix(t *testing.T) {
	c, err := NewDifyClient("https://api.dify.ai/v1", "app-key")
	require.NoError(t, err)
	assert.Equal(t, "https://api.dify.ai/v1/chat-messages", c.GetChatURL())
}

func TestDifyChat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat-messages", r.URL.Path)
		assert.Equal(t, "Bearer app-key", r.Header.Get("Authorization"))

		var req ChatMessageRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ligar a cafeteira", req.Query)
		assert.Equal(t, ResponseModeBlocking, req.ResponseMode)
		assert.Equal(t, DefaultUser, req.User)
		assert.NotNil(t, req.Inputs)
		assert.Empty(t, req.ConversationID)

		json.NewEncoder(w).Encode(ChatMessageResponse{
			Event:          "message",
			ConversationID: "conv-1",
			Answer:         "Ligando a cafeteira.",
		})
	}))
	defer srv.Close()

	c, err := NewDifyClient(srv.URL+"/v1", "app-key")
	require.NoError(t, err)

	resp, err := c.Chat(context.Background(), &ChatMessageRequest{Query: "ligar a cafeteira"})
	require.NoError(t, err)
	assert.Equal(t, "Ligando a cafeteira.", resp.Answer)
	assert.Equal(t, "conv-1", resp.ConversationID)
}

func TestDifyChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c, err := NewDifyClient(srv.URL, "bad-key")
	require.NoError(t, err)

	_, err = c.Chat(context.Background(), &ChatMessageRequest{Query: "oi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
