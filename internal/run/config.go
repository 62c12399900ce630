package run

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/igolaizola/lyricsmith/internal/filter"
	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
)

var ErrInvalidConfig = errors.New("invalid run config")

type Config struct {
	Model           string
	AdapterPath     string
	Theme           string
	Plan            plan.Plan
	Sampling        llm.Sampling
	Seed            int64
	Tries           int
	ContextSections int
	Filter          filter.Config
	Escalation      EscalationPolicy
	// TolerateFailures turns a failed attempt into a candidate with no
	// content instead of aborting the run.
	TolerateFailures bool
	// CallTimeout bounds a single generation call. Zero means no bound.
	CallTimeout time.Duration
}

func (c Config) Validate() error {
	if err := c.validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Theme) == "" {
		return fmt.Errorf("theme is required")
	}
	if len(c.Plan) == 0 {
		return fmt.Errorf("plan has no sections")
	}
	if c.Tries < 1 {
		return fmt.Errorf("tries must be >= 1")
	}
	if c.ContextSections < 0 {
		return fmt.Errorf("context-sections must be >= 0")
	}
	if c.Sampling.MaxTokens < 1 {
		return fmt.Errorf("max-tokens must be >= 1")
	}
	if c.Sampling.Temperature < 0 {
		return fmt.Errorf("temp must be >= 0")
	}
	if c.Sampling.TopP <= 0 || c.Sampling.TopP > 1 {
		return fmt.Errorf("top-p must be in (0,1]")
	}
	if c.Sampling.TopK < 0 {
		return fmt.Errorf("top-k must be >= 0")
	}
	if c.Sampling.MinP < 0 || c.Sampling.MinP > 1 {
		return fmt.Errorf("min-p must be in [0,1]")
	}
	if c.Filter.MinWordsPerLine < 0 {
		return fmt.Errorf("min-words must be >= 0")
	}
	if c.Filter.MaxSameLineRepeats < 1 {
		return fmt.Errorf("max-same-line-repeats must be >= 1")
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("call timeout must be >= 0")
	}
	if c.Escalation.MinContentLines < 0 {
		return fmt.Errorf("escalation min-content-lines must be >= 0")
	}
	return nil
}

// SectionResult is one finalized section.
type SectionResult struct {
	Section    plan.Section `json:"section"`
	Text       string       `json:"text"`
	Score      float64      `json:"score"`
	Candidates int          `json:"candidates"`
	Escalated  bool         `json:"escalated"`
}

type Result struct {
	Song     string          `json:"song"`
	Sections []SectionResult `json:"sections"`
}
