package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
)

const (
	DefaultBaseURL    = "https://openrouter.ai/api/v1"
	DefaultTimeout    = 60 * time.Second
	DefaultMaxRetries = 2
)

// Models known to follow the item extraction prompt
const (
	ModelClaude35Sonnet = "anthropic/claude-3.5-sonnet"
	ModelClaude3Haiku   = "anthropic/claude-3-haiku"
	ModelGPT4oMini      = "openai/gpt-4o-mini"
	ModelGPT4o          = "openai/gpt-4o"
)

// ErrEmptyResponse is returned when the completion has no choices
var ErrEmptyResponse = errors.New("no choices in response")

// Client talks to an OpenAI-compatible chat completion API
type Client struct {
	client       openai.Client
	defaultModel string
}

// ClientOption configures the client
type ClientOption func(*clientConfig)

type clientConfig struct {
	baseURL      string
	timeout      time.Duration
	maxRetries   int
	defaultModel string
}

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.baseURL = url
	}
}

// WithTimeout sets custom HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(cfg *clientConfig) {
		cfg.timeout = timeout
	}
}

// WithMaxRetries sets how often a failed request is retried
func WithMaxRetries(n int) ClientOption {
	return func(cfg *clientConfig) {
		cfg.maxRetries = n
	}
}

// WithDefaultModel sets the model used when a call passes none
func WithDefaultModel(model string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.defaultModel = model
	}
}

// NewClient creates a new OpenAI-compatible client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	cfg := &clientConfig{
		baseURL:      DefaultBaseURL,
		timeout:      DefaultTimeout,
		maxRetries:   DefaultMaxRetries,
		defaultModel: ModelGPT4oMini,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &Client{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(cfg.baseURL),
			option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
			option.WithMaxRetries(cfg.maxRetries),
			option.WithHeader("HTTP-Referer", "https://github.com/rezonia/invoice-builder"),
			option.WithHeader("X-Title", "Invoice Builder"),
		),
		defaultModel: cfg.defaultModel,
	}
}

// DefaultModel returns the model used when a call passes none
func (c *Client) DefaultModel() string {
	return c.defaultModel
}

// ChatText sends a text-only chat request and returns the first answer
func (c *Client) ChatText(ctx context.Context, model, systemPrompt, userPrompt string) (string, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	return c.complete(ctx, model, messages)
}

// ChatWithImage sends the prompt together with an image, e.g. a photographed receipt
func (c *Client) ChatWithImage(ctx context.Context, model, systemPrompt, userPrompt string, imageData []byte, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(imageData))

	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
		openai.TextContentPart(userPrompt),
		openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
			URL: dataURL,
		}),
	}))

	return c.complete(ctx, model, messages)
}

func (c *Client) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	if model == "" {
		model = c.defaultModel
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       model,
		Messages:    messages,
		MaxTokens:   param.NewOpt[int64](2048),
		Temperature: param.NewOpt[float64](0),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

// ModelInfo describes a model offered by the API
type ModelInfo struct {
	ID      string `json:"id"`
	OwnedBy string `json:"owned_by,omitempty"`
	Created int64  `json:"created,omitempty"`
}

// ListModels returns the models of the /models endpoint
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	page, err := c.client.Models.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models failed: %w", err)
	}

	models := make([]ModelInfo, 0, len(page.Data))
	for _, m := range page.Data {
		models = append(models, ModelInfo{
			ID:      m.ID,
			OwnedBy: m.OwnedBy,
			Created: m.Created,
		})
	}
	return models, nil
}

// ExtractJSON pulls the JSON payload out of a reply, unwrapping markdown
// code fences when present.
func ExtractJSON(response string) string {
	if start := strings.Index(response, "```json"); start != -1 {
		start += 7
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	if start := strings.Index(response, "```"); start != -1 {
		start += 3
		// skip the language tag
		if nl := strings.Index(response[start:], "\n"); nl != -1 {
			start += nl + 1
		}
		if end := strings.Index(response[start:], "```"); end != -1 {
			return strings.TrimSpace(response[start : start+end])
		}
	}

	response = strings.TrimSpace(response)
	if i := strings.IndexAny(response, "{["); i > 0 {
		if j := strings.LastIndexAny(response, "}]"); j > i {
			return response[i : j+1]
		}
	}
	return response
}
