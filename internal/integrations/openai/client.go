package openai

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"

	sdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"shop-support-agent/internal/domain"
	"shop-support-agent/internal/gateway"
)

const (
	providerName = "openai"
	DefaultModel = "gpt-4o-mini"
)

// Client is an OpenAI chat-completions provider for the gateway.
type Client struct {
	client sdk.Client
	apiKey string
	model  string
}

type Option func(*[]option.RequestOption)

func WithBaseURL(baseURL string) Option {
	return func(opts *[]option.RequestOption) {
		baseURL = strings.TrimSpace(baseURL)
		if baseURL == "" {
			return
		}
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		*opts = append(*opts, option.WithBaseURL(baseURL))
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(opts *[]option.RequestOption) {
		if httpClient != nil {
			*opts = append(*opts, option.WithHTTPClient(httpClient))
		}
	}
}

// NewClient creates a Client for model, falling back to DefaultModel. The SDK's
// built-in retries are disabled; a failed call falls back immediately.
func NewClient(apiKey, model string, opts ...Option) *Client {
	apiKey = strings.TrimSpace(apiKey)
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	for _, opt := range opts {
		opt(&reqOpts)
	}

	return &Client{
		client: sdk.NewClient(reqOpts...),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *Client) Name() string  { return providerName }
func (c *Client) Model() string { return c.model }

// Generate sends messages as one chat completion and returns the first choice.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", gateway.CredentialError(providerName, errors.New("api key is empty"))
	}

	res, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Model:    c.model,
		Messages: toMessages(messages),
	})
	if err != nil {
		return "", classify(err)
	}
	if len(res.Choices) == 0 {
		return "", gateway.MalformedResponseError(providerName, errors.New("no choices in response"))
	}
	text := res.Choices[0].Message.Content
	if text == "" {
		return "", gateway.MalformedResponseError(providerName, errors.New("empty message content"))
	}
	return text, nil
}

func classify(err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return gateway.ServiceError(providerName, apiErr.StatusCode, err)
	}
	var urlErr *url.Error
	var netErr net.Error
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &urlErr) || errors.As(err, &netErr) {
		return gateway.NetworkError(providerName, err)
	}
	// Anything else surfaced by the SDK after a 2xx is a decoding failure.
	return gateway.MalformedResponseError(providerName, err)
}

func toMessages(messages []domain.ChatMessage) []sdk.ChatCompletionMessageParamUnion {
	out := make([]sdk.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case domain.RoleAssistant, domain.RoleModel:
			out = append(out, sdk.AssistantMessage(m.Content))
		case domain.RoleSystem:
			out = append(out, sdk.SystemMessage(m.Content))
		default:
			out = append(out, sdk.UserMessage(m.Content))
		}
	}
	return out
}
