package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/igolaizola/lyricsmith/internal/filter"
	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
	"github.com/igolaizola/lyricsmith/internal/prompt"
	"github.com/igolaizola/lyricsmith/internal/scoring"
)

var ErrAllAttemptsFailed = errors.New("all generation attempts failed")

// GenerationError is a failed model call for one attempt of one section.
type GenerationError struct {
	Section plan.Section
	Attempt int
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s attempt %d: %v", e.Section.Label(), e.Attempt, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

type Runner struct {
	cfg     Config
	client  llm.Client
	prompts *prompt.Builder
	scorer  *scoring.Scorer
	log     *zap.Logger
}

type Option func(*Runner)

func WithLogger(l *zap.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.log = l
		}
	}
}

func WithPrompts(b *prompt.Builder) Option {
	return func(r *Runner) {
		if b != nil {
			r.prompts = b
		}
	}
}

func NewRunner(cfg Config, client llm.Client, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		client:  client,
		prompts: prompt.NewBuilder(prompt.Options{}),
		scorer:  scoring.NewScorer(cfg.Filter.Classifier),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute generates every section of the plan in order and assembles the
// song. Nothing is returned on failure except the error.
func (r *Runner) Execute(ctx context.Context) (Result, error) {
	if err := r.cfg.Validate(); err != nil {
		return Result{}, err
	}

	sections := make([]SectionResult, 0, len(r.cfg.Plan))
	texts := make([]string, 0, len(r.cfg.Plan))

	for i, sec := range r.cfg.Plan {
		log := r.log.With(
			zap.Int("section", i),
			zap.String("type", string(sec.Type)),
			zap.String("speaker", sec.Speaker),
		)
		state := Pending
		transition := func(next SectionState) {
			log.Debug("section state", zap.Stringer("from", state), zap.Stringer("to", next))
			state = next
		}

		window := contextWindow(texts, r.cfg.ContextSections)
		base := r.cfg.Seed + int64(i)*100

		transition(Generating)
		cands, err := r.generateRound(ctx, log, sec, window, base, r.cfg.Sampling, r.cfg.Tries)
		if err != nil {
			return Result{}, err
		}

		transition(Scoring)
		best, idx := Choose(cands, window, r.scorer)
		logCandidates(log, cands, idx)
		transition(Selected)

		escalated := false
		if lines := filter.CountContentLines(best.Cleaned); r.cfg.Escalation.Applies(sec.Type, lines) {
			transition(Escalating)
			sampling, tries := r.cfg.Escalation.Relax(r.cfg.Sampling, r.cfg.Tries)
			log.Info("escalating short section",
				zap.Int("contentLines", lines),
				zap.Int("tries", tries),
				zap.Int("maxTokens", sampling.MaxTokens),
				zap.Float64("temp", sampling.Temperature),
			)
			retry, err := r.generateRound(ctx, log, sec, window, base+r.cfg.Escalation.SeedOffset, sampling, tries)
			if err != nil {
				return Result{}, err
			}
			best, idx = Choose(retry, window, r.scorer)
			logCandidates(log, retry, idx)
			escalated = true
			cands = append(cands, retry...)
			if n := filter.CountContentLines(best.Cleaned); n < r.cfg.Escalation.MinContentLines {
				log.Warn("section still short after escalation", zap.Int("contentLines", n))
			}
		}

		text := best.Cleaned
		transition(Finalized)
		log.Info("section finalized",
			zap.Float64("score", best.Score),
			zap.Int("attempt", best.Attempt),
			zap.Int64("seed", best.Seed),
			zap.Bool("escalated", escalated),
		)

		texts = append(texts, text)
		sections = append(sections, SectionResult{
			Section:    sec,
			Text:       text,
			Score:      best.Score,
			Candidates: len(cands),
			Escalated:  escalated,
		})
	}

	return Result{
		Song:     strings.TrimSpace(strings.Join(texts, "\n\n")) + "\n",
		Sections: sections,
	}, nil
}

func (r *Runner) generateRound(
	ctx context.Context,
	log *zap.Logger,
	sec plan.Section,
	window string,
	baseSeed int64,
	sampling llm.Sampling,
	tries int,
) ([]Candidate, error) {
	userPrompt := r.prompts.Build(r.cfg.Theme, sec, window)
	cands := make([]Candidate, 0, tries)
	failed := 0
	var lastErr error

	for t := 0; t < tries; t++ {
		seed := baseSeed + int64(t)
		req := llm.Request{
			Model:       r.cfg.Model,
			AdapterPath: r.cfg.AdapterPath,
			System:      r.prompts.System(),
			Prompt:      userPrompt,
			Sampling:    sampling,
			Seed:        seed,
		}

		raw, err := r.call(ctx, req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			genErr := &GenerationError{Section: sec, Attempt: t, Err: err}
			if !r.cfg.TolerateFailures {
				return nil, genErr
			}
			log.Warn("generation attempt failed", zap.Int("attempt", t), zap.Int64("seed", seed), zap.Error(err))
			cands = append(cands, Candidate{Cleaned: frame("", sec, r.cfg.Filter), Attempt: t, Seed: seed, Err: genErr})
			failed++
			lastErr = genErr
			continue
		}

		// Candidates are framed before scoring so selection, escalation and
		// the finalized text all see the same lines.
		cleaned := frame(filter.CleanSection(raw, r.cfg.Filter), sec, r.cfg.Filter)
		if filter.CountContentLines(cleaned) == 0 {
			log.Debug("attempt filtered to nothing", zap.Int("attempt", t), zap.Int64("seed", seed))
		}
		cands = append(cands, Candidate{Raw: raw, Cleaned: cleaned, Attempt: t, Seed: seed})
	}

	if failed == len(cands) {
		return nil, fmt.Errorf("section %s: %w: %w", sec.Label(), ErrAllAttemptsFailed, lastErr)
	}
	return cands, nil
}

func (r *Runner) call(ctx context.Context, req llm.Request) (string, error) {
	if r.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.CallTimeout)
		defer cancel()
	}
	return r.client.Generate(ctx, req)
}

// frame drops every tag line from text and wraps the remaining content with
// the tags of sec. Repeat capping runs again since removed tags may have
// split runs of the same line.
func frame(text string, sec plan.Section, cfg filter.Config) string {
	content := filter.CleanLines(filter.ContentLines(text), cfg)
	lines := make([]string, 0, len(content)+2)
	lines = append(lines, sec.OpenTag())
	lines = append(lines, content...)
	lines = append(lines, sec.CloseTag())
	return strings.Join(lines, "\n")
}

func contextWindow(texts []string, k int) string {
	if k <= 0 || len(texts) == 0 {
		return ""
	}
	if len(texts) > k {
		texts = texts[len(texts)-k:]
	}
	return strings.Join(texts, "\n\n")
}

func logCandidates(log *zap.Logger, cands []Candidate, selected int) {
	for i, c := range cands {
		log.Debug("candidate",
			zap.Int("attempt", c.Attempt),
			zap.Int64("seed", c.Seed),
			zap.Float64("score", c.Score),
			zap.Bool("selected", i == selected),
		)
	}
}
