package run

import (
	"math"
	"slices"

	"github.com/igolaizola/lyricsmith/internal/llm"
	"github.com/igolaizola/lyricsmith/internal/plan"
)

// EscalationPolicy decides when a selected section is too short and how the
// single extra round relaxes sampling.
type EscalationPolicy struct {
	Types           []plan.SectionType
	MinContentLines int

	MaxTokensFloor int
	TempDelta      float64
	TempCeil       float64
	TopPDelta      float64
	TopPCeil       float64
	TopKFloor      int
	MinPDelta      float64
	MinPFloor      float64
	TriesFloor     int
	SeedOffset     int64
}

func DefaultEscalation() EscalationPolicy {
	return EscalationPolicy{
		Types:           []plan.SectionType{plan.Outro},
		MinContentLines: 4,
		MaxTokensFloor:  300,
		TempDelta:       0.1,
		TempCeil:        0.85,
		TopPDelta:       0.04,
		TopPCeil:        0.92,
		TopKFloor:       60,
		MinPDelta:       0.02,
		MinPFloor:       0.05,
		TriesFloor:      3,
		SeedOffset:      999,
	}
}

// Applies reports whether a section of type t with the given number of
// content lines needs an escalation round.
func (p EscalationPolicy) Applies(t plan.SectionType, contentLines int) bool {
	if !slices.Contains(p.Types, t) {
		return false
	}
	return contentLines < p.MinContentLines
}

// Relax returns the sampling and tries of the escalation round.
func (p EscalationPolicy) Relax(s llm.Sampling, tries int) (llm.Sampling, int) {
	return llm.Sampling{
		MaxTokens:   max(p.MaxTokensFloor, s.MaxTokens),
		Temperature: math.Min(p.TempCeil, s.Temperature+p.TempDelta),
		TopP:        math.Min(p.TopPCeil, s.TopP+p.TopPDelta),
		TopK:        max(p.TopKFloor, s.TopK),
		MinP:        math.Max(p.MinPFloor, s.MinP-p.MinPDelta),
	}, max(p.TriesFloor, tries)
}
