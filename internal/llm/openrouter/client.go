package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"resume-critic/internal/llm"
	"resume-critic/internal/shared/telemetry"
)

const (
	defaultBaseURL = "https://openrouter.ai/api/v1"
	defaultTimeout = 120 * time.Second
)

// Options configures a Client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// Referer and Title are optional attribution headers OpenRouter shows in its dashboard.
	Referer string
	Title   string
}

// Client implements llm.Client against OpenRouter's OpenAI-compatible endpoint.
type Client struct {
	http  *resty.Client
	model string
}

// NewClient constructs an OpenRouter client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenRouter")
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY: %w", llm.ErrMissingAPIKey)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(opts.APIKey).
		SetHeader("Content-Type", "application/json")
	if opts.Referer != "" {
		client.SetHeader("HTTP-Referer", opts.Referer)
	}
	if opts.Title != "" {
		client.SetHeader("X-Title", opts.Title)
	}
	return &Client{http: client, model: opts.Model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one system + user exchange and returns the assistant text.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	body := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": in.System},
			{"role": "user", "content": in.User},
		},
	}
	if in.Temperature != nil {
		body["temperature"] = *in.Temperature
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openrouter request: %w", err)
	}

	raw := resp.String()
	if msg := gjson.Get(raw, "error.message"); msg.Exists() {
		return "", fmt.Errorf("openrouter error status=%d: %s", resp.StatusCode(), msg.String())
	}
	if resp.IsError() {
		return "", fmt.Errorf("openrouter error status=%d", resp.StatusCode())
	}
	if !gjson.Get(raw, "choices.0").Exists() {
		return "", fmt.Errorf("openrouter response missing choices")
	}

	telemetry.Info("llm.response", map[string]any{
		"provider":          "openrouter",
		"model":             c.model,
		"prompt_tokens":     gjson.Get(raw, "usage.prompt_tokens").Int(),
		"completion_tokens": gjson.Get(raw, "usage.completion_tokens").Int(),
		"total_tokens":      gjson.Get(raw, "usage.total_tokens").Int(),
	})

	text := strings.TrimSpace(gjson.Get(raw, "choices.0.message.content").String())
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	return text, nil
}

var _ llm.Client = (*Client)(nil)
