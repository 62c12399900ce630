package run

import (
	"strings"

	"github.com/igolaizola/lyricsmith/internal/scoring"
)

// Candidate is one generation attempt for a section.
type Candidate struct {
	Raw     string  `json:"raw,omitempty"`
	Cleaned string  `json:"cleaned"`
	Score   float64 `json:"score"`
	Attempt int     `json:"attempt"`
	Seed    int64   `json:"seed"`
	Err     error   `json:"-"`
}

// Choose scores every candidate and returns the best one with its index.
// Candidates are scored against context when it is not blank. The first of
// equal maxima wins. An empty slice yields index -1.
func Choose(cands []Candidate, context string, scorer *scoring.Scorer) (Candidate, int) {
	withContext := strings.TrimSpace(context) != ""
	best := -1
	for i := range cands {
		switch {
		case cands[i].Err != nil:
			cands[i].Score = scoring.NoContentScore
		case withContext:
			cands[i].Score = scorer.ScoreInContext(cands[i].Cleaned, context)
		default:
			cands[i].Score = scorer.Score(cands[i].Cleaned)
		}
		if best < 0 || cands[i].Score > cands[best].Score {
			best = i
		}
	}
	if best < 0 {
		return Candidate{}, -1
	}
	return cands[best], best
}
