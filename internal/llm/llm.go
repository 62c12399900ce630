package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	ProviderMLX       = "mlx"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderCopilot   = "copilot"
)

var ErrEmptyOutput = errors.New("model returned no output")

// Sampling holds the decoding knobs of one generation call. Backends ignore
// the knobs their API does not expose.
type Sampling struct {
	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	TopK        int     `json:"topK"`
	MinP        float64 `json:"minP"`
}

type Request struct {
	Model       string
	AdapterPath string
	System      string
	Prompt      string
	Sampling
	Seed int64
}

// Client is the single call boundary to the text-generation model.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Error is a failure reported by a backend.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s generation failed: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

type Options struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Binary is the mlx generate executable.
	Binary string
	// Workdir is the working directory of copilot sessions.
	Workdir string
}

// New returns the backend named by opts.Provider. mlx is the default.
func New(ctx context.Context, opts Options) (Client, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", ProviderMLX:
		return NewMLX(opts.Binary), nil
	case ProviderOpenAI:
		return NewOpenAI(opts)
	case ProviderAnthropic:
		return NewAnthropic(opts)
	case ProviderGemini:
		return NewGemini(ctx, opts)
	case ProviderCopilot:
		return NewCopilot(ctx, opts)
	default:
		return nil, fmt.Errorf("unsupported provider %q", opts.Provider)
	}
}

// Close releases backend resources when the client holds any.
func Close(c Client) error {
	if cl, ok := c.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func pickModel(reqModel, fallback string) string {
	if m := strings.TrimSpace(reqModel); m != "" {
		return m
	}
	return fallback
}
