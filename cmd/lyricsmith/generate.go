package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/igolaizola/lyricsmith/internal/config"
	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
	"github.com/igolaizola/lyricsmith/internal/prompt"
	"github.com/igolaizola/lyricsmith/internal/run"
)

type generateFlags struct {
	theme           string
	structure       string
	maxTokens       int
	temp            float64
	topP            float64
	topK            int
	minP            float64
	seed            int64
	tries           int
	minWords        int
	contextSections int
	out             string
	model           string
	adapterDir      string
	provider        string
	randomTheme     bool
}

func newGenerateCmd() *cobra.Command {
	var f generateFlags
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a song for a structure expression",
		Example: `  lyricsmith generate --theme "ночной город" \
    --structure "VERSE(speransky) > CHORUS(alekhin) > OUTRO(alekhin)"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runGenerate(ctx, cmd, f)
		},
	}

	d := config.Default()
	fs := cmd.Flags()
	fs.StringVar(&f.theme, "theme", "", "Song theme")
	fs.StringVar(&f.structure, "structure", "", `Structure expression, e.g. "VERSE(speransky) > CHORUS(alekhin)"`)
	fs.IntVar(&f.maxTokens, "max-tokens", d.Generation.Sampling.MaxTokens, "Maximum tokens per generation call")
	fs.Float64Var(&f.temp, "temp", d.Generation.Sampling.Temperature, "Sampling temperature")
	fs.Float64Var(&f.topP, "top-p", d.Generation.Sampling.TopP, "Nucleus sampling threshold")
	fs.IntVar(&f.topK, "top-k", d.Generation.Sampling.TopK, "Top-k sampling cutoff")
	fs.Float64Var(&f.minP, "min-p", d.Generation.Sampling.MinP, "Min-p sampling threshold")
	fs.Int64Var(&f.seed, "seed", d.Generation.Seed, "Base random seed")
	fs.IntVar(&f.tries, "tries", d.Generation.Tries, "Candidates generated per section")
	fs.IntVar(&f.minWords, "min-words", d.Filter.MinWords, "Minimum words per kept line")
	fs.IntVar(&f.contextSections, "context-sections", d.Generation.ContextSections, "Previous sections passed as context")
	fs.StringVar(&f.out, "out", d.Output, "Output file")
	fs.StringVar(&f.model, "model", "", "Model name or path (backend default when empty)")
	fs.StringVar(&f.adapterDir, "adapter-dir", d.Generation.AdapterDir, "LoRA adapter directory (mlx only)")
	fs.StringVar(&f.provider, "provider", d.Backend.Provider, "Generation backend: mlx, openai, anthropic, gemini or copilot")
	fs.BoolVar(&f.randomTheme, "random-theme", false, "Pick a theme from the built-in topic list using the seed")
	_ = cmd.MarkFlagRequired("structure")
	return cmd
}

// applyFlags overrides config values with the flags set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config, f generateFlags) {
	changed := cmd.Flags().Changed
	if changed("theme") {
		cfg.Generation.Theme = f.theme
	}
	if changed("max-tokens") {
		cfg.Generation.Sampling.MaxTokens = f.maxTokens
	}
	if changed("temp") {
		cfg.Generation.Sampling.Temperature = f.temp
	}
	if changed("top-p") {
		cfg.Generation.Sampling.TopP = f.topP
	}
	if changed("top-k") {
		cfg.Generation.Sampling.TopK = f.topK
	}
	if changed("min-p") {
		cfg.Generation.Sampling.MinP = f.minP
	}
	if changed("seed") {
		cfg.Generation.Seed = f.seed
	}
	if changed("tries") {
		cfg.Generation.Tries = f.tries
	}
	if changed("min-words") {
		cfg.Filter.MinWords = f.minWords
	}
	if changed("context-sections") {
		cfg.Generation.ContextSections = f.contextSections
	}
	if changed("out") {
		cfg.Output = f.out
	}
	if changed("model") {
		cfg.Generation.Model = f.model
	}
	if changed("adapter-dir") {
		cfg.Generation.AdapterDir = f.adapterDir
	}
	if changed("provider") {
		cfg.Backend.Provider = f.provider
	}
}

func runGenerate(ctx context.Context, cmd *cobra.Command, f generateFlags) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg, f)

	if f.randomTheme {
		cfg.Generation.Theme = prompt.PickTopic(cfg.Generation.Seed)
	}
	if strings.TrimSpace(cfg.Generation.Theme) == "" {
		return fmt.Errorf("a theme is required: use --theme or --random-theme")
	}

	p, err := plan.Parse(f.structure)
	if err != nil {
		return err
	}
	rc, err := cfg.RunConfig(p)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := rc.Validate(); err != nil {
		return err
	}

	log := logger.With(zap.String("run", uuid.NewString()))
	log.Info("starting generation",
		zap.String("theme", rc.Theme),
		zap.Stringer("plan", rc.Plan),
		zap.String("provider", cfg.LLMOptions().Provider),
		zap.String("model", rc.Model),
	)

	client, err := llm.New(ctx, cfg.LLMOptions())
	if err != nil {
		return err
	}
	defer func() {
		if err := llm.Close(client); err != nil {
			log.Warn("failed to close backend", zap.Error(err))
		}
	}()

	runner := run.NewRunner(rc, client,
		run.WithLogger(log),
		run.WithPrompts(prompt.NewBuilder(cfg.PromptOptions())),
	)
	res, err := runner.Execute(ctx)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	if err := os.WriteFile(cfg.Output, []byte(res.Song), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Output, err)
	}
	log.Info("song written", zap.String("path", cfg.Output), zap.Int("sections", len(res.Sections)))

	fmt.Fprint(cmd.OutOrStdout(), res.Song)
	return nil
}
