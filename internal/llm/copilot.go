package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	sdk "github.com/github/copilot-sdk/go"
)

const defaultCopilotModel = "gpt-5.3-codex"

// Copilot generates through the Copilot SDK. Every request gets a fresh
// session so attempts do not see each other. The SDK exposes no sampling
// parameters.
type Copilot struct {
	client  *sdk.Client
	model   string
	workdir string
}

func NewCopilot(ctx context.Context, opts Options) (*Copilot, error) {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = strings.TrimSpace(os.Getenv("COPILOT_MODEL"))
	}
	if model == "" {
		model = defaultCopilotModel
	}
	workdir := opts.Workdir
	if workdir == "" {
		workdir = "."
	}

	client := sdk.NewClient(&sdk.ClientOptions{Cwd: workdir})
	if err := client.Start(ctx); err != nil {
		return nil, fmt.Errorf("start copilot sdk client: %w", err)
	}
	return &Copilot{client: client, model: model, workdir: workdir}, nil
}

func (c *Copilot) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Stop()
}

func (c *Copilot) Generate(ctx context.Context, req Request) (string, error) {
	config := &sdk.SessionConfig{
		Model:            pickModel(req.Model, c.model),
		WorkingDirectory: c.workdir,
		InfiniteSessions: &sdk.InfiniteSessionConfig{Enabled: sdk.Bool(false)},
	}
	session, err := c.client.CreateSession(ctx, config)
	if err != nil {
		return "", &Error{Provider: ProviderCopilot, Err: fmt.Errorf("create session: %w", err)}
	}
	defer session.Destroy()

	prompt := req.Prompt
	if req.System != "" {
		prompt = req.System + "\n\n" + req.Prompt
	}
	resp, err := session.SendAndWait(ctx, sdk.MessageOptions{Prompt: prompt})
	if err != nil {
		return "", &Error{Provider: ProviderCopilot, Err: fmt.Errorf("send: %w", err)}
	}

	text := ""
	if resp != nil && resp.Data.Content != nil {
		text = strings.TrimSpace(*resp.Data.Content)
	}
	if text == "" {
		return "", &Error{Provider: ProviderCopilot, Err: ErrEmptyOutput}
	}
	return text, nil
}
