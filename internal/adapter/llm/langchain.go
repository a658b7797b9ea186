// Package llm adapts langchaingo model clients to port.LLM.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
)

// Options selects and tunes a provider.
type Options struct {
	Provider    string // "googleai", "openai", "ollama"
	Model       string
	APIKeyEnv   string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Stats tracks usage across calls.
type Stats struct {
	TotalCalls       int
	FailedCalls      int
	TotalInputChars  int
	TotalOutputChars int
}

// Client is a single-turn, stateless text generator.
type Client struct {
	model llms.Model
	name  string
	opts  Options
	mu    sync.Mutex
	stats Stats
}

var defaultModels = map[string]string{
	"googleai": "gemini-1.5-flash",
	"openai":   "gpt-4o-mini",
	"ollama":   "llama3.2",
}

var defaultKeyEnv = map[string]string{
	"googleai": "GOOGLE_API_KEY",
	"openai":   "OPENAI_API_KEY",
}

// New builds a client for opts.Provider.
func New(ctx context.Context, opts Options) (*Client, error) {
	if opts.Model == "" {
		opts.Model = defaultModels[opts.Provider]
	}
	if opts.APIKeyEnv == "" {
		opts.APIKeyEnv = defaultKeyEnv[opts.Provider]
	}

	apiKey := func() (string, error) {
		key := os.Getenv(opts.APIKeyEnv)
		if key == "" {
			return "", fmt.Errorf("API key not found. Set %s environment variable", opts.APIKeyEnv)
		}
		return key, nil
	}

	var (
		model llms.Model
		err   error
	)

	switch opts.Provider {
	case "googleai", "gemini":
		key, kerr := apiKey()
		if kerr != nil {
			return nil, kerr
		}
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(key),
			googleai.WithDefaultModel(opts.Model),
		)
	case "openai":
		key, kerr := apiKey()
		if kerr != nil {
			return nil, kerr
		}
		openaiOpts := []openai.Option{
			openai.WithToken(key),
			openai.WithModel(opts.Model),
		}
		if opts.BaseURL != "" {
			openaiOpts = append(openaiOpts, openai.WithBaseURL(opts.BaseURL))
		}
		model, err = openai.New(openaiOpts...)
	case "ollama":
		ollamaOpts := []ollama.Option{ollama.WithModel(opts.Model)}
		if opts.BaseURL != "" {
			ollamaOpts = append(ollamaOpts, ollama.WithServerURL(opts.BaseURL))
		}
		model, err = ollama.New(ollamaOpts...)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", opts.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", opts.Provider, err)
	}

	return NewWithModel(model, opts), nil
}

// NewWithModel wraps an already constructed langchaingo model.
func NewWithModel(model llms.Model, opts Options) *Client {
	return &Client{
		model: model,
		name:  opts.Model,
		opts:  opts,
	}
}

func (c *Client) callOptions() []llms.CallOption {
	var callOpts []llms.CallOption
	if c.opts.Temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(c.opts.Temperature))
	}
	if c.opts.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.opts.MaxTokens))
	}
	return callOpts
}

// Generate implements single-turn generation.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	})
}

func (c *Client) chat(ctx context.Context, messages []llms.MessageContent) (string, error) {
	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	inputChars := 0
	for _, m := range messages {
		for _, p := range m.Parts {
			if t, ok := p.(llms.TextContent); ok {
				inputChars += len(t.Text)
			}
		}
	}

	output, err := c.generate(ctx, messages)

	c.mu.Lock()
	c.stats.TotalCalls++
	c.stats.TotalInputChars += inputChars
	if err != nil {
		c.stats.FailedCalls++
	} else {
		c.stats.TotalOutputChars += len(output)
	}
	c.mu.Unlock()

	return output, err
}

var errEmptyResponse = errors.New("no response from LLM")

func (c *Client) generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	resp, err := c.model.GenerateContent(ctx, messages, c.callOptions()...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}
	output := resp.Choices[0].Content
	if strings.TrimSpace(output) == "" {
		return "", errEmptyResponse
	}
	return output, nil
}

func (c *Client) ModelName() string {
	return c.name
}

// Stats returns the current usage statistics.
func (c *Client) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
