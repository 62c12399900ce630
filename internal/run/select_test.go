package run

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
	"github.com/igolaizola/lyricsmith/internal/scoring"
	"github.com/igolaizola/lyricsmith/internal/script"
)

const goodSection = "<VERSE speaker=a>\nмы идём по пустому городу\nветер стучит в окно\nночь держит нас за руку\nсвет горит на вокзале\n</VERSE>"

func TestChoose_Empty(t *testing.T) {
	got, idx := Choose(nil, "", scoring.NewScorer(script.Default()))
	assert.Equal(t, -1, idx)
	assert.Equal(t, Candidate{}, got)
}

func TestChoose_FirstOfEqualWins(t *testing.T) {
	cands := []Candidate{
		{Cleaned: "<VERSE speaker=a>\nкоротко\n</VERSE>", Attempt: 0},
		{Cleaned: goodSection, Attempt: 1},
		{Cleaned: goodSection, Attempt: 2},
	}
	best, idx := Choose(cands, "", scoring.NewScorer(script.Default()))
	assert.Equal(t, 1, idx)
	assert.Equal(t, 1, best.Attempt)
	assert.Equal(t, cands[1].Score, cands[2].Score)
	assert.Greater(t, cands[1].Score, cands[0].Score)
}

func TestChoose_UsesContext(t *testing.T) {
	fresh := "<VERSE speaker=a>\nснег ложится на перрон\nмы молчим до утра\nпоезд уходит без нас\nфонари гаснут по одному\n</VERSE>"
	cands := []Candidate{
		{Cleaned: goodSection},
		{Cleaned: fresh},
	}
	scorer := scoring.NewScorer(script.Default())

	_, idx := Choose(cands, "", scorer)
	assert.Equal(t, 0, idx)

	_, idx = Choose(cands, goodSection, scorer)
	assert.Equal(t, 1, idx)
}

func TestChoose_FailedCandidate(t *testing.T) {
	cands := []Candidate{
		{Cleaned: goodSection, Err: errors.New("boom")},
		{Cleaned: "<VERSE speaker=a>\n</VERSE>"},
	}
	_, idx := Choose(cands, "", scoring.NewScorer(script.Default()))
	assert.Equal(t, 0, idx)
	assert.Equal(t, scoring.NoContentScore, cands[0].Score)
	assert.Equal(t, scoring.NoContentScore, cands[1].Score)
}

func TestEscalationPolicy(t *testing.T) {
	p := DefaultEscalation()

	assert.True(t, p.Applies(plan.Outro, 3))
	assert.False(t, p.Applies(plan.Outro, 4))
	assert.False(t, p.Applies(plan.Verse, 0))

	s, tries := p.Relax(llm.Sampling{MaxTokens: 400, Temperature: 0.5, TopP: 0.8, TopK: 80, MinP: 0.1}, 5)
	assert.Equal(t, 400, s.MaxTokens)
	assert.InDelta(t, 0.6, s.Temperature, 1e-9)
	assert.InDelta(t, 0.84, s.TopP, 1e-9)
	assert.Equal(t, 80, s.TopK)
	assert.InDelta(t, 0.08, s.MinP, 1e-9)
	assert.Equal(t, 5, tries)

	s, tries = p.Relax(llm.Sampling{MaxTokens: 100, Temperature: 1, TopP: 1, TopK: 0, MinP: 0}, 1)
	assert.Equal(t, llm.Sampling{MaxTokens: 300, Temperature: 0.85, TopP: 0.92, TopK: 60, MinP: 0.05}, s)
	assert.Equal(t, 3, tries)
}

func TestSectionState_String(t *testing.T) {
	states := map[SectionState]string{
		Pending:          "pending",
		Generating:       "generating",
		Scoring:          "scoring",
		Selected:         "selected",
		Escalating:       "escalating",
		Finalized:        "finalized",
		SectionState(42): "unknown",
	}
	for s, want := range states {
		assert.Equal(t, want, s.String())
	}
}
