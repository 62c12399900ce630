package scoring

import (
	"strings"

	"github.com/igolaizola/lyricsmith/internal/filter"
)

func ScoreInContext(text, prior string) float64 {
	return defaultScorer.ScoreInContext(text, prior)
}

func AssessInContext(text, prior string) Quality {
	return defaultScorer.AssessInContext(text, prior)
}

func (s *Scorer) ScoreInContext(text, prior string) float64 {
	return s.AssessInContext(text, prior).Score
}

// AssessInContext rates text and penalizes lines and 4-grams copied from
// prior, the already finalized sections.
func (s *Scorer) AssessInContext(text, prior string) Quality {
	q := s.Assess(text)
	if strings.TrimSpace(prior) == "" {
		return q
	}

	cur := filter.ContentLines(text)
	prev := filter.ContentLines(prior)
	if len(cur) == 0 || len(prev) == 0 {
		return q
	}

	curSet := toSet(cur)
	q.LineOverlap = safeDiv(float64(intersectionCount(curSet, toSet(prev))), float64(len(curSet)))
	if q.LineOverlap > 0 {
		q.Score -= 8.0 * q.LineOverlap
		q.Reasons = append(q.Reasons, "lines copied from previous sections")
	}

	curGrams := toSet(ngrams(strings.Fields(strings.Join(cur, " ")), gramSize))
	prevGrams := toSet(ngrams(strings.Fields(strings.Join(prev, " ")), gramSize))
	q.GramOverlap = safeDiv(float64(intersectionCount(curGrams, prevGrams)), float64(len(curGrams)))
	if q.GramOverlap > 0 {
		q.Score -= 6.0 * q.GramOverlap
		q.Reasons = append(q.Reasons, "phrases copied from previous sections")
	}
	return q
}

func toSet(items []string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

func intersectionCount(a, b map[string]struct{}) int {
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
