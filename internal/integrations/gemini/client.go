package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"shop-support-agent/internal/domain"
	"shop-support-agent/internal/gateway"
)

const (
	providerName   = "gemini"
	DefaultModel   = "gemini-2.5-flash"
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	apiVersion     = "v1beta"
)

// generateContentRequest is the minimal request shape for models.generateContent.
type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

// generateContentResponse is the minimal response shape for models.generateContent.
type generateContentResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client is a focused Gemini REST client for content generation.
type Client struct {
	rc     *resty.Client
	apiKey string
	model  string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/"); baseURL != "" {
			c.rc.SetBaseURL(baseURL)
		}
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			base := c.rc.BaseURL
			c.rc = resty.NewWithClient(httpClient).SetBaseURL(base)
		}
	}
}

// NewClient creates a Client for model, falling back to DefaultModel. An empty
// apiKey is accepted; every call then fails with a credential error.
func NewClient(apiKey, model string, opts ...Option) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{
		rc:     resty.New().SetBaseURL(DefaultBaseURL),
		apiKey: strings.TrimSpace(apiKey),
		model:  model,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Name() string  { return providerName }
func (c *Client) Model() string { return c.model }

func generatePath(model string) string {
	return fmt.Sprintf("/%s/models/%s:generateContent", apiVersion, url.PathEscape(model))
}

// Generate sends messages as a generateContent call and returns the text of
// the first candidate.
func (c *Client) Generate(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", gateway.CredentialError(providerName, errors.New("api key is empty"))
	}

	res, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-goog-api-key", c.apiKey).
		SetBody(generateContentRequest{Contents: toContents(messages)}).
		Post(generatePath(c.model))
	if err != nil {
		return "", gateway.NetworkError(providerName, err)
	}

	if !res.IsSuccess() {
		return "", gateway.ServiceError(providerName, res.StatusCode(), errors.New(serviceMessage(res.Body())))
	}

	var payload generateContentResponse
	if err := json.Unmarshal(res.Body(), &payload); err != nil {
		return "", gateway.MalformedResponseError(providerName, fmt.Errorf("decode response: %w", err))
	}
	return candidateText(payload)
}

func candidateText(payload generateContentResponse) (string, error) {
	if len(payload.Candidates) == 0 {
		if payload.PromptFeedback != nil && payload.PromptFeedback.BlockReason != "" {
			return "", gateway.MalformedResponseError(providerName, fmt.Errorf("prompt blocked: %s", payload.PromptFeedback.BlockReason))
		}
		return "", gateway.MalformedResponseError(providerName, errors.New("no candidates in response"))
	}

	var b strings.Builder
	for _, p := range payload.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", gateway.MalformedResponseError(providerName,
			fmt.Errorf("candidate has no text (finish reason %q)", payload.Candidates[0].FinishReason))
	}
	return b.String(), nil
}

func serviceMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	const limit = 4096
	if len(body) > limit {
		body = body[:limit]
	}
	return string(body)
}

// toContents maps chat messages onto Gemini contents. Gemini only knows the
// "user" and "model" roles.
func toContents(messages []domain.ChatMessage) []content {
	out := make([]content, 0, len(messages))
	for _, m := range messages {
		out = append(out, content{
			Role:  geminiRole(m.Role),
			Parts: []part{{Text: m.Content}},
		})
	}
	return out
}

func geminiRole(role string) string {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case domain.RoleModel, domain.RoleAssistant:
		return domain.RoleModel
	default:
		return domain.RoleUser
	}
}
