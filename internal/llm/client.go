// Package llm calls an OpenAI-compatible chat completion endpoint such as
// LM Studio.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultTimeout bounds a single completion request.
const DefaultTimeout = 120 * time.Second

// ErrResponseSchema marks a 200 response whose body is not a chat completion.
var ErrResponseSchema = errors.New("unexpected response schema")

// Message is one chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configures a Client.
type Options struct {
	BaseURL     string
	Model       string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// Client sends one chat completion request per call. It never retries.
type Client struct {
	endpoint    string
	model       string
	apiKey      string
	temperature float64
	httpClient  *http.Client

	Stats *Stats
}

func NewClient(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:    strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		model:       opts.Model,
		apiKey:      opts.APIKey,
		temperature: opts.Temperature,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		Stats: NewStats(time.Hour),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts messages and returns the first choice's content, trimmed.
func (c *Client) Complete(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	text, err := c.complete(ctx, messages)
	if c.Stats != nil {
		c.Stats.Record(time.Since(start), err)
	}
	return text, err
}

func (c *Client) complete(ctx context.Context, messages []Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200), Err: fmt.Errorf("%w: %v", ErrResponseSchema, err)}
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return "", &TransportError{StatusCode: resp.StatusCode, Body: truncate(string(respBody), 200), Err: ErrResponseSchema}
	}
	return strings.TrimSpace(*parsed.Choices[0].Message.Content), nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// TransportError reports a completion call that could not be completed or
// did not return a usable response.
type TransportError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("llm request (status %d): %v: %s", e.StatusCode, e.Err, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("llm request: %v", e.Err)
	default:
		return fmt.Sprintf("llm request failed with status %d: %s", e.StatusCode, truncate(e.Body, 500))
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request hit its deadline.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
