package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

func TestComplete(t *testing.T) {
	var body map[string]any
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  "gpt-3.5-turbo",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "drafted"},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 9, "completion_tokens": 1, "total_tokens": 10},
		})
	}))
	defer ts.Close()

	c := NewClient("sk-test", "gpt-3.5-turbo", ts.URL)
	out, err := c.Complete(context.Background(), "system prompt", "user prompt", 400, 0.3)
	require.NoError(t, err)
	assert.Equal(t, "drafted", out)

	assert.Equal(t, "gpt-3.5-turbo", body["model"])
	assert.InDelta(t, 400, body["max_tokens"], 0)
	assert.InDelta(t, 0.3, body["temperature"], 0.0001)
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user prompt", msgs[1].(map[string]any)["content"])
}

func TestComplete_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer ts.Close()

	_, err := NewClient("sk-test", "gpt-3.5-turbo", ts.URL).Complete(context.Background(), "", "hi", 10, 0.7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestComplete_RateLimitedIsTransient(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"requests","code":"rate_limit_exceeded"}}`))
	}))
	defer ts.Close()

	_, err := NewClient("sk-test", "gpt-3.5-turbo", ts.URL).Complete(context.Background(), "", "hi", 10, 0.7)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestComplete_UnauthorizedIsPermanent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer ts.Close()

	_, err := NewClient("sk-bad", "gpt-3.5-turbo", ts.URL).Complete(context.Background(), "", "hi", 10, 0.7)
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}
