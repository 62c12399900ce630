package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

const defaultAnthropicModel = "claude-3-5-haiku-latest"

// Anthropic uses the messages API. It has no seed or min-p parameter.
type Anthropic struct {
	client *anthropic.Client
	model  string
}

func NewAnthropic(opts Options) (*Anthropic, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	var clientOpts []anthropic.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, anthropic.WithBaseURL(opts.BaseURL))
	}
	model := opts.Model
	if model == "" {
		model = defaultAnthropicModel
	}
	return &Anthropic{
		client: anthropic.NewClient(opts.APIKey, clientOpts...),
		model:  model,
	}, nil
}

func (a *Anthropic) Generate(ctx context.Context, req Request) (string, error) {
	temp := float32(req.Temperature)
	topP := float32(req.TopP)
	msgReq := anthropic.MessagesRequest{
		Model:       anthropic.Model(pickModel(req.Model, a.model)),
		System:      req.System,
		Messages:    []anthropic.Message{anthropic.NewUserTextMessage(req.Prompt)},
		MaxTokens:   req.MaxTokens,
		Temperature: &temp,
		TopP:        &topP,
	}
	if req.TopK > 0 {
		topK := req.TopK
		msgReq.TopK = &topK
	}

	resp, err := a.client.CreateMessages(ctx, msgReq)
	if err != nil {
		return "", &Error{Provider: ProviderAnthropic, Err: err}
	}

	var b strings.Builder
	for _, c := range resp.Content {
		if c.Type == anthropic.MessagesContentTypeText {
			b.WriteString(c.GetText())
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", &Error{Provider: ProviderAnthropic, Err: ErrEmptyOutput}
	}
	return text, nil
}
