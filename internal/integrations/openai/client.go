package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"job-advisor/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	completionPath = "/chat/completions"
	defaultTimeout = 30 * time.Second

	// Advice answers are short and factual.
	defaultTemperature = 0.2
	defaultMaxTokens   = 380

	maxErrorBody    = 2048
	maxResponseBody = 512 << 10
)

// ErrMalformedResponse marks a 2xx reply whose body is not a usable
// completion.
var ErrMalformedResponse = errors.New("openai: malformed response")

type completionRequest struct {
	Model       string               `json:"model"`
	Messages    []domain.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

type completionChoice struct {
	Message      domain.ChatMessage `json:"message"`
	FinishReason string             `json:"finish_reason"`
}

type completionResponse struct {
	Choices []completionChoice `json:"choices"`
}

// apiErrorEnvelope is the body OpenAI sends with non-2xx statuses.
type apiErrorEnvelope struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// HTTPStatusError is returned for any non-2xx reply. Message holds the API's
// own error text when the body carried one, otherwise the raw body prefix.
type HTTPStatusError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *HTTPStatusError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai: status %d (%s): %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

func (e *HTTPStatusError) HTTPStatusCode() int { return e.StatusCode }

// Client talks to an OpenAI-compatible completions endpoint. The key is
// passed on every call because settings may rotate it between requests.
type Client struct {
	endpoint    string
	http        *http.Client
	temperature float64
	maxTokens   int
}

type Option func(*Client)

// WithBaseURL points the client at another deployment. A base without a
// version segment gets /v1 appended.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.endpoint = endpointFor(baseURL) }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMaxTokens caps the completion length. Non-positive values are ignored.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		endpoint:    endpointFor(defaultBaseURL),
		http:        &http.Client{Timeout: defaultTimeout},
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func endpointFor(baseURL string) string {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	switch {
	case base == "":
		base = defaultBaseURL
	case !strings.HasSuffix(base, "/v1"):
		base += "/v1"
	}
	return base + completionPath
}

// Chat returns the trimmed text of the first choice. An empty string with a
// nil error means the model answered with nothing; callers decide what that
// means.
func (c *Client) Chat(ctx context.Context, apiKey, model string, messages []domain.ChatMessage) (string, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return "", errors.New("openai: api key must not be empty")
	}
	if strings.TrimSpace(model) == "" {
		return "", errors.New("openai: model must not be empty")
	}

	var out completionResponse
	err := c.post(ctx, apiKey, completionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}, &out)
	if err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

// post sends in as JSON and decodes a 2xx body into out. Transport failures
// are wrapped with "request failed"; status and decode failures carry their
// own types so callers can tell them apart.
func (c *Client) post(ctx context.Context, apiKey string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("openai: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("openai: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode/100 != 2 {
		return statusError(res)
	}

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBody))
	if err != nil {
		return fmt.Errorf("openai: request failed: read body: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrMalformedResponse, err)
	}
	return nil
}

func statusError(res *http.Response) *HTTPStatusError {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
	e := &HTTPStatusError{StatusCode: res.StatusCode, Message: strings.TrimSpace(string(raw))}

	var env apiErrorEnvelope
	if json.Unmarshal(raw, &env) == nil && env.Error.Message != "" {
		e.Message = env.Error.Message
		e.Type = env.Error.Type
	}
	return e
}
