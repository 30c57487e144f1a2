package anthropic

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/agribalance/pkg/clients/llm"
)

const (
	apiURL       = "https://api.anthropic.com/v1/messages"
	apiVersion   = "2023-06-01"
	DefaultModel = "claude-3-5-haiku-20241022"
	maxTokens    = 4096
)

type anthropicClient struct {
	httpClient *resty.Client
	url        string
	model      string
}

// Option customizes the client.
type Option func(*anthropicClient)

// WithURL points the client at another messages endpoint.
func WithURL(url string) Option {
	return func(c *anthropicClient) { c.url = url }
}

// NewClient creates a configured Anthropic client. An empty model selects DefaultModel.
func NewClient(apiKey, model string, timeout time.Duration, opts ...Option) llm.Client {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(timeout)

	c := &anthropicClient{httpClient: client, url: apiURL, model: model}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system"`
	Temperature *float32  `json:"temperature,omitempty"`
	Messages    []Message `json:"messages"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateJSON asks for a JSON document matching req.Schema. The schema goes
// into the system prompt and the reply is prefilled with "{".
func (c *anthropicClient) GenerateJSON(ctx context.Context, req llm.Request) (string, error) {
	system := "Respond with a single JSON object and nothing else."
	if req.Schema != nil {
		schemaJSON, err := json.Marshal(req.Schema.JSONSchema())
		if err != nil {
			return "", fmt.Errorf("encode response schema: %w", err)
		}
		system += "\nThe object must validate against this JSON schema:\n" + string(schemaJSON)
	}

	reqBody := messageRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages: []Message{
			{Role: "user", Content: req.Prompt},
			{Role: "assistant", Content: "{"},
		},
	}
	if req.Temperature > 0 {
		t := req.Temperature
		reqBody.Temperature = &t
	}

	var respBody messageResponse
	var errBody errorResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		SetError(&errBody).
		Post(c.url)

	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		msg := errBody.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return "", fmt.Errorf("anthropic api error %d: %s", resp.StatusCode(), msg)
	}
	if len(respBody.Content) == 0 {
		return "", llm.ErrEmptyResponse
	}

	return cleanJSON("{" + respBody.Content[0].Text), nil
}

// cleanJSON strips markdown fences the model sometimes wraps around JSON.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimSuffix(text, "```")
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}
