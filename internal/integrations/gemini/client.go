// Package gemini adapts the Google Generative AI SDK to plain prompt-in,
// text-out completion.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"travel-agent/internal/integrations/paramstore"
)

const defaultModel = "gemini-2.5-flash-lite"

// generator is the part of *genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type dialFunc func(ctx context.Context, apiKey, model string) (generator, func() error, error)

// StatusError carries the HTTP status of a failed Gemini call.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gemini: unexpected status %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client generates text with a Gemini model. The SDK client is created on
// first use with the key stored under <paramPrefix>/gemini-api-key.
type Client struct {
	getter      paramstore.Getter
	paramPrefix string
	model       string
	dial        dialFunc

	mu    sync.Mutex
	gen   generator
	close func() error
}

type Option func(*Client)

func WithModel(model string) Option {
	return func(c *Client) {
		if model = strings.TrimSpace(model); model != "" {
			c.model = model
		}
	}
}

func NewClient(ps paramstore.Getter, paramPrefix string, opts ...Option) (*Client, error) {
	if ps == nil {
		return nil, errors.New("gemini: paramstore getter must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("gemini: parameter prefix must not be empty")
	}
	c := &Client{
		getter:      ps,
		paramPrefix: paramPrefix,
		model:       defaultModel,
		dial:        dialSDK,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func dialSDK(ctx context.Context, apiKey, model string) (generator, func() error, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, nil, err
	}
	return client.GenerativeModel(model), client.Close, nil
}

func (c *Client) keyParameterName() string {
	return c.paramPrefix + "/gemini-api-key"
}

func (c *Client) generator(ctx context.Context) (generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != nil {
		return c.gen, nil
	}
	key, err := paramstore.Token(ctx, c.getter, c.keyParameterName())
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	gen, closeFn, err := c.dial(ctx, key, c.model)
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	c.gen, c.close = gen, closeFn
	return gen, nil
}

// Generate sends prompt as a single text part and joins the text parts of the
// first candidate.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("gemini: prompt must not be empty")
	}
	gen, err := c.generator(ctx)
	if err != nil {
		return "", err
	}

	resp, err := gen.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("gemini: generate: %w", &StatusError{StatusCode: apiErr.Code, Message: apiErr.Message})
		}
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("gemini: empty response")
	}
	return out, nil
}

// Close releases the SDK client if one was created.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.close == nil {
		return nil
	}
	err := c.close()
	c.gen, c.close = nil, nil
	return err
}
