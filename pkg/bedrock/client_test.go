package bedrock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

const testModel = "anthropic.claude-3-haiku-20240307-v1:0"

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)

	cfg := aws.Config{
		Region: "us-east-1",
		Credentials: aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{AccessKeyID: "AKID", SecretAccessKey: "secret"}, nil
		}),
	}
	rt := bedrockruntime.NewFromConfig(cfg, noSDKRetries, func(o *bedrockruntime.Options) {
		o.BaseEndpoint = aws.String(ts.URL)
	})
	return NewFromRuntime(rt, testModel)
}

func TestComplete(t *testing.T) {
	var got invokeRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/invoke"))
		assert.Contains(t, r.URL.Path, "/model/")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"text","text":"there"}],"usage":{"input_tokens":5,"output_tokens":2}}`))
	})

	out, err := c.Complete(context.Background(), "be brief", "hi", 200, 0.8)
	require.NoError(t, err)
	assert.Equal(t, "hello there", out)

	assert.Equal(t, anthropicVersion, got.AnthropicVersion)
	assert.Equal(t, 200, got.MaxTokens)
	assert.InDelta(t, 0.8, got.Temperature, 0.0001)
	assert.Equal(t, "be brief", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
}

func TestComplete_EmptyContent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content":[]}`))
	})

	_, err := c.Complete(context.Background(), "", "hi", 10, 0.5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}

func TestComplete_ThrottledIsTransient(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Amzn-ErrorType", "ThrottlingException")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"Too many requests"}`))
	})

	_, err := c.Complete(context.Background(), "", "hi", 10, 0.5)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestComplete_ValidationIsPermanent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Amzn-ErrorType", "ValidationException")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"bad input"}`))
	})

	_, err := c.Complete(context.Background(), "", "hi", 10, 0.5)
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}
