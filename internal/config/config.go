package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/igolaizola/lyricsmith/internal/filter"
	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
	"github.com/igolaizola/lyricsmith/internal/prompt"
	"github.com/igolaizola/lyricsmith/internal/run"
	"github.com/igolaizola/lyricsmith/internal/script"
)

const (
	DefaultPath     = "lyricsmith.yaml"
	DefaultMLXModel = "mlx-community/Llama-3.2-3B-Instruct-4bit"
)

type Sampling struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temp"`
	TopP        float64 `yaml:"top_p"`
	TopK        int     `yaml:"top_k"`
	MinP        float64 `yaml:"min_p"`
}

type Config struct {
	Generation struct {
		Model            string   `yaml:"model"`
		AdapterDir       string   `yaml:"adapter_dir"`
		Theme            string   `yaml:"theme"`
		Seed             int64    `yaml:"seed"`
		Tries            int      `yaml:"tries"`
		ContextSections  int      `yaml:"context_sections"`
		TolerateFailures bool     `yaml:"tolerate_failures"`
		Sampling         Sampling `yaml:"sampling"`
	} `yaml:"generation"`
	Backend struct {
		Provider string        `yaml:"provider"`
		APIKey   string        `yaml:"api_key"`
		BaseURL  string        `yaml:"base_url"`
		Binary   string        `yaml:"binary"`
		Workdir  string        `yaml:"workdir"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"backend"`
	Script struct {
		Native  string `yaml:"native"`
		Foreign string `yaml:"foreign"`
	} `yaml:"script"`
	Filter struct {
		MinWords           int                 `yaml:"min_words"`
		MaxSameLineRepeats int                 `yaml:"max_same_line_repeats"`
		DropForeignLines   bool                `yaml:"drop_foreign_lines"`
		DropMixedTokens    bool                `yaml:"drop_mixed_tokens"`
		KeepTagLines       bool                `yaml:"keep_tag_lines"`
		CollapseWhitespace bool                `yaml:"collapse_whitespace"`
		NormalizeUnicode   bool                `yaml:"normalize_unicode"`
		Glitches           []filter.GlitchRule `yaml:"glitches"`
	} `yaml:"filter"`
	Escalation struct {
		Types           []string `yaml:"types"`
		MinContentLines int      `yaml:"min_content_lines"`
	} `yaml:"escalation"`
	Prompt struct {
		System     string   `yaml:"system"`
		MinLines   int      `yaml:"min_lines"`
		ScriptRule string   `yaml:"script_rule"`
		ExtraRules []string `yaml:"extra_rules"`
	} `yaml:"prompt"`
	Output string `yaml:"output"`
}

// Default returns the stock generation knobs.
func Default() *Config {
	var cfg Config
	cfg.Generation.AdapterDir = "adapters"
	cfg.Generation.Seed = 42
	cfg.Generation.Tries = 3
	cfg.Generation.ContextSections = 2
	cfg.Generation.Sampling = Sampling{
		MaxTokens:   260,
		Temperature: 0.8,
		TopP:        0.9,
		TopK:        40,
		MinP:        0.06,
	}
	cfg.Backend.Provider = llm.ProviderMLX
	cfg.Script.Native = "cyrillic"
	cfg.Script.Foreign = "latin"

	f := filter.DefaultConfig()
	cfg.Filter.MinWords = f.MinWordsPerLine
	cfg.Filter.MaxSameLineRepeats = f.MaxSameLineRepeats
	cfg.Filter.DropForeignLines = f.DropForeignLines
	cfg.Filter.DropMixedTokens = f.DropMixedTokens
	cfg.Filter.KeepTagLines = f.KeepTagLines
	cfg.Filter.CollapseWhitespace = f.CollapseWhitespace
	cfg.Filter.NormalizeUnicode = f.NormalizeUnicode
	cfg.Filter.Glitches = f.Glitches

	esc := run.DefaultEscalation()
	for _, t := range esc.Types {
		cfg.Escalation.Types = append(cfg.Escalation.Types, string(t))
	}
	cfg.Escalation.MinContentLines = esc.MinContentLines

	cfg.Output = "generated_song.txt"
	return &cfg
}

// Load reads .env, then the YAML file at path over the defaults, then the
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("LYRICSMITH_PROVIDER"); v != "" {
		c.Backend.Provider = v
	}
	if v := os.Getenv("LYRICSMITH_MODEL"); v != "" {
		c.Generation.Model = v
	}
	if v := os.Getenv("LYRICSMITH_API_KEY"); v != "" {
		c.Backend.APIKey = v
	}
	if v := os.Getenv("LYRICSMITH_BASE_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if c.Backend.APIKey == "" {
		if name, ok := providerKeyEnv[c.provider()]; ok {
			c.Backend.APIKey = os.Getenv(name)
		}
	}
}

var providerKeyEnv = map[string]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

func (c *Config) provider() string {
	p := strings.ToLower(strings.TrimSpace(c.Backend.Provider))
	if p == "" {
		return llm.ProviderMLX
	}
	return p
}

// Model returns the configured model, defaulting to the local mlx model when
// the mlx backend is selected. Other backends pick their own default.
func (c *Config) Model() string {
	if m := strings.TrimSpace(c.Generation.Model); m != "" {
		return m
	}
	if c.provider() == llm.ProviderMLX {
		return DefaultMLXModel
	}
	return ""
}

func (c *Config) Validate() error {
	var errs []error
	switch c.provider() {
	case llm.ProviderMLX, llm.ProviderOpenAI, llm.ProviderAnthropic, llm.ProviderGemini, llm.ProviderCopilot:
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q", c.Backend.Provider))
	}
	if _, err := c.Classifier(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.escalationTypes(); err != nil {
		errs = append(errs, err)
	}
	for _, g := range c.Filter.Glitches {
		if strings.TrimSpace(g.Marker) == "" {
			errs = append(errs, fmt.Errorf("glitch rule with empty marker"))
		}
	}
	if c.Backend.Timeout < 0 {
		errs = append(errs, fmt.Errorf("backend timeout must be >= 0"))
	}
	return errors.Join(errs...)
}

func (c *Config) Classifier() (script.Classifier, error) {
	cl, err := script.New(c.Script.Native, c.Script.Foreign)
	if err != nil {
		return script.Classifier{}, fmt.Errorf("script classes: %w", err)
	}
	return cl, nil
}

func (c *Config) FilterConfig() (filter.Config, error) {
	cl, err := c.Classifier()
	if err != nil {
		return filter.Config{}, err
	}
	return filter.Config{
		MinWordsPerLine:    c.Filter.MinWords,
		MaxSameLineRepeats: c.Filter.MaxSameLineRepeats,
		DropForeignLines:   c.Filter.DropForeignLines,
		DropMixedTokens:    c.Filter.DropMixedTokens,
		KeepTagLines:       c.Filter.KeepTagLines,
		CollapseWhitespace: c.Filter.CollapseWhitespace,
		NormalizeUnicode:   c.Filter.NormalizeUnicode,
		Glitches:           append([]filter.GlitchRule(nil), c.Filter.Glitches...),
		Classifier:         cl,
	}, nil
}

func (c *Config) escalationTypes() ([]plan.SectionType, error) {
	out := make([]plan.SectionType, 0, len(c.Escalation.Types))
	for _, s := range c.Escalation.Types {
		t, ok := plan.ParseType(s)
		if !ok {
			return nil, fmt.Errorf("escalation: unknown section type %q", s)
		}
		out = append(out, t)
	}
	return out, nil
}

func (c *Config) EscalationPolicy() (run.EscalationPolicy, error) {
	types, err := c.escalationTypes()
	if err != nil {
		return run.EscalationPolicy{}, err
	}
	p := run.DefaultEscalation()
	p.Types = types
	p.MinContentLines = c.Escalation.MinContentLines
	return p, nil
}

func (c *Config) Sampling() llm.Sampling {
	s := c.Generation.Sampling
	return llm.Sampling{
		MaxTokens:   s.MaxTokens,
		Temperature: s.Temperature,
		TopP:        s.TopP,
		TopK:        s.TopK,
		MinP:        s.MinP,
	}
}

func (c *Config) LLMOptions() llm.Options {
	return llm.Options{
		Provider: c.provider(),
		Model:    c.Model(),
		APIKey:   c.Backend.APIKey,
		BaseURL:  c.Backend.BaseURL,
		Binary:   c.Backend.Binary,
		Workdir:  c.Backend.Workdir,
	}
}

func (c *Config) PromptOptions() prompt.Options {
	return prompt.Options{
		System:     c.Prompt.System,
		MinLines:   c.Prompt.MinLines,
		ScriptRule: c.Prompt.ScriptRule,
		MaxRepeats: c.Filter.MaxSameLineRepeats,
		ExtraRules: append([]string(nil), c.Prompt.ExtraRules...),
	}
}

// RunConfig assembles the orchestrator config for a parsed plan.
func (c *Config) RunConfig(p plan.Plan) (run.Config, error) {
	if err := c.Validate(); err != nil {
		return run.Config{}, err
	}
	fc, err := c.FilterConfig()
	if err != nil {
		return run.Config{}, err
	}
	esc, err := c.EscalationPolicy()
	if err != nil {
		return run.Config{}, err
	}
	return run.Config{
		Model:            c.Model(),
		AdapterPath:      c.Generation.AdapterDir,
		Theme:            c.Generation.Theme,
		Plan:             p,
		Sampling:         c.Sampling(),
		Seed:             c.Generation.Seed,
		Tries:            c.Generation.Tries,
		ContextSections:  c.Generation.ContextSections,
		Filter:           fc,
		Escalation:       esc,
		TolerateFailures: c.Generation.TolerateFailures,
		CallTimeout:      c.Backend.Timeout,
	}, nil
}
