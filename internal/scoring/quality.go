package scoring

import (
	"sort"
	"strings"

	"github.com/igolaizola/lyricsmith/internal/filter"
	"github.com/igolaizola/lyricsmith/internal/script"
)

// NoContentScore is returned for text without any content lines.
const NoContentScore = -1e9

const gramSize = 4

type Quality struct {
	NativeRatio     float64  `json:"nativeRatio"`
	LineCount       int      `json:"lineCount"`
	MaxRepeat       int      `json:"maxRepeat"`
	Top3Sum         int      `json:"top3Sum"`
	GramRepetition  float64  `json:"gramRepetition"`
	AvgWords        float64  `json:"avgWords"`
	UniqueLineRatio float64  `json:"uniqueLineRatio"`
	ForeignLetters  int      `json:"foreignLetters"`
	LineOverlap     float64  `json:"lineOverlap,omitempty"`
	GramOverlap     float64  `json:"gramOverlap,omitempty"`
	Score           float64  `json:"score"`
	Reasons         []string `json:"reasons,omitempty"`
}

// Scorer rates cleaned section text. Higher is better.
type Scorer struct {
	classifier script.Classifier
}

func NewScorer(c script.Classifier) *Scorer {
	return &Scorer{classifier: c}
}

var defaultScorer = NewScorer(script.Default())

func Score(text string) float64 {
	return defaultScorer.Score(text)
}

func Assess(text string) Quality {
	return defaultScorer.Assess(text)
}

func (s *Scorer) Score(text string) float64 {
	return s.Assess(text).Score
}

func (s *Scorer) Assess(text string) Quality {
	content := filter.ContentLines(text)
	if len(content) == 0 {
		return Quality{Score: NoContentScore, Reasons: []string{"no content lines"}}
	}

	joined := strings.Join(content, " ")
	native, foreign := s.classifier.Count(joined)
	nativeRatio := float64(native) / float64(maxInt(1, native+foreign))

	freq := countLines(content)
	reps := make([]int, 0, len(freq))
	for _, v := range freq {
		reps = append(reps, v)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(reps)))
	maxRep := reps[0]
	top3 := 0
	for i := 0; i < len(reps) && i < 3; i++ {
		top3 += reps[i]
	}

	grams := ngrams(strings.Fields(joined), gramSize)
	gramRep := safeDiv(float64(repeatedExcess(grams)), float64(maxInt(1, len(grams))))

	words := 0
	for _, ln := range content {
		words += len(strings.Fields(ln))
	}
	avg := float64(words) / float64(len(content))
	uniq := float64(len(freq)) / float64(len(content))

	q := Quality{
		NativeRatio:     nativeRatio,
		LineCount:       len(content),
		MaxRepeat:       maxRep,
		Top3Sum:         top3,
		GramRepetition:  gramRep,
		AvgWords:        avg,
		UniqueLineRatio: uniq,
		ForeignLetters:  foreign,
	}

	score := 0.0
	score += 4.0 * nativeRatio
	score += 0.10 * float64(len(content))
	score += 0.20 * avg
	score += 2.0 * uniq

	if maxRep > 2 {
		score -= 4.0 * float64(maxRep-2)
		q.Reasons = append(q.Reasons, "a line repeats more than twice")
	}
	if top3 > 8 {
		score -= 0.8 * float64(top3-8)
		q.Reasons = append(q.Reasons, "a few lines dominate the section")
	}
	score -= 3.5 * gramRep
	if uniq < 0.4 {
		score -= 5.0
		q.Reasons = append(q.Reasons, "low line uniqueness")
	}
	if avg > 20 {
		score -= 2.0 * (avg - 20)
		q.Reasons = append(q.Reasons, "lines read like prose")
	}
	if foreign > 0 {
		score -= 10.0
		q.Reasons = append(q.Reasons, "foreign script letters remain")
	}

	q.Score = score
	return q
}

func countLines(lines []string) map[string]int {
	out := make(map[string]int, len(lines))
	for _, ln := range lines {
		out[ln]++
	}
	return out
}

func ngrams(words []string, n int) []string {
	if len(words) < n {
		return nil
	}
	out := make([]string, 0, len(words)-n+1)
	for i := 0; i+n <= len(words); i++ {
		out = append(out, strings.Join(words[i:i+n], " "))
	}
	return out
}

// repeatedExcess sums occurrences beyond the first for every gram.
func repeatedExcess(grams []string) int {
	counts := countLines(grams)
	total := 0
	for _, v := range counts {
		if v > 1 {
			total += v - 1
		}
	}
	return total
}

func safeDiv(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
