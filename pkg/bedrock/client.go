// Package bedrock completes prompts with Anthropic models hosted on AWS Bedrock.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

const anthropicVersion = "bedrock-2023-05-31"

// Client invokes a Bedrock model with the Anthropic messages payload.
type Client struct {
	client *bedrockruntime.Client
	model  string
}

// NewClient loads the default AWS credential chain for region.
func NewClient(ctx context.Context, region, model string) (*Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, eris.Wrap(err, "bedrock: load aws config")
	}
	return NewFromRuntime(bedrockruntime.NewFromConfig(cfg, noSDKRetries), model), nil
}

// NewFromRuntime wraps an existing runtime client.
func NewFromRuntime(rt *bedrockruntime.Client, model string) *Client {
	return &Client{client: rt, model: model}
}

func noSDKRetries(o *bedrockruntime.Options) { o.RetryMaxAttempts = 1 }

// Name identifies the provider in logs.
func (c *Client) Name() string { return "bedrock" }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type invokeRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	System           string    `json:"system,omitempty"`
	Messages         []message `json:"messages"`
}

// Complete invokes the model once and joins the returned text blocks.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	payload, err := json.Marshal(invokeRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		System:           system,
		Messages:         []message{{Role: "user", Content: user}},
	})
	if err != nil {
		return "", eris.Wrap(err, "bedrock: marshal request")
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.model),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", eris.Wrap(classify(err), "bedrock: invoke model")
	}

	body := gjson.ParseBytes(resp.Body)
	zap.L().Debug("bedrock: usage",
		zap.String("model", c.model),
		zap.Int64("input_tokens", body.Get("usage.input_tokens").Int()),
		zap.Int64("output_tokens", body.Get("usage.output_tokens").Int()),
	)

	var b strings.Builder
	for _, block := range body.Get("content").Array() {
		if block.Get("type").String() == "text" {
			b.WriteString(block.Get("text").String())
		}
	}
	if b.Len() == 0 {
		return "", eris.New("bedrock: empty response")
	}
	return b.String(), nil
}

func classify(err error) error {
	var se interface{ HTTPStatusCode() int }
	if errors.As(err, &se) {
		return resilience.ClassifyStatus(err, se.HTTPStatusCode())
	}
	return err
}
