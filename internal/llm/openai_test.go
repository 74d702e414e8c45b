package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIClient_Complete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": "` + "```json\\n{\\\"title\\\": \\\"Site\\\"}\\n```" + `"}
			}]
		}`))
	}))
	defer srv.Close()

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/"
	client, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)
	defer func() { _ = client.Close() }()

	text, err := client.Complete(context.Background(), Request{
		System: "You write drafts.",
		Prompt: "Describe the project.",
		JSON:   true,
		Tier:   TierStandard,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Site"}`, text)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
	format, ok := got["response_format"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "json_object", format["type"])
}

func TestOpenAIClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"message": "bad request", "type": "invalid_request_error"}}`))
	}))
	defer srv.Close()

	config := DefaultOpenAIConfig()
	config.BaseURL = srv.URL + "/"
	client, err := NewOpenAIClient(config, "test-key")
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), Request{Prompt: "hi", Tier: TierLite})
	assert.Error(t, err)
}
