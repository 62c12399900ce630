package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

const defaultMLXBinary = "mlx_lm.generate"

// MLX runs the mlx_lm generate command once per request.
type MLX struct {
	binary string
}

func NewMLX(binary string) *MLX {
	if strings.TrimSpace(binary) == "" {
		binary = defaultMLXBinary
	}
	return &MLX{binary: binary}
}

func (m *MLX) Generate(ctx context.Context, req Request) (string, error) {
	args := []string{"--model", req.Model}
	if req.AdapterPath != "" {
		args = append(args, "--adapter-path", req.AdapterPath)
	}
	args = append(args,
		"--system-prompt", req.System,
		"--prompt", req.Prompt,
		"--max-tokens", strconv.Itoa(req.MaxTokens),
		"--temp", formatFloat(req.Temperature),
		"--top-p", formatFloat(req.TopP),
		"--top-k", strconv.Itoa(req.TopK),
		"--min-p", formatFloat(req.MinP),
		"--seed", strconv.FormatInt(req.Seed, 10),
		"--verbose", "F",
	)

	out, err := runCmd(ctx, m.binary, args...)
	if err != nil {
		return "", &Error{Provider: ProviderMLX, Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &Error{Provider: ProviderMLX, Err: ErrEmptyOutput}
	}
	return out, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func runCmd(ctx context.Context, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	var out bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%s timed out", bin)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return "", fmt.Errorf("%s: %w", bin, err)
		}
		return "", fmt.Errorf("%s: %w: %s", bin, err, msg)
	}
	return out.String(), nil
}
