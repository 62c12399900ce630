package filter

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/igolaizola/lyricsmith/internal/script"
)

var (
	tagOpenRe  = regexp.MustCompile(`^\s*<([A-Z]+)([^>]*)>\s*$`)
	tagCloseRe = regexp.MustCompile(`^\s*</([A-Z]+)>\s*$`)
	spaceRunRe = regexp.MustCompile(`\s+`)
)

// GlitchRule drops lines carrying a known transcription glitch: a line that
// contains a native hyphen compound and Marker, but not the correctly spelled
// Allow form.
type GlitchRule struct {
	Marker string `yaml:"marker"`
	Allow  string `yaml:"allow"`
}

// DefaultGlitches catches the dropped-morpheme "по-прежему".
var DefaultGlitches = []GlitchRule{
	{Marker: "по-преж", Allow: "по-прежнему"},
}

type Config struct {
	MinWordsPerLine    int
	MaxSameLineRepeats int
	DropForeignLines   bool
	DropMixedTokens    bool
	KeepTagLines       bool
	CollapseWhitespace bool
	NormalizeUnicode   bool
	Glitches           []GlitchRule
	Classifier         script.Classifier
}

func DefaultConfig() Config {
	return Config{
		MinWordsPerLine:    3,
		MaxSameLineRepeats: 2,
		DropForeignLines:   true,
		DropMixedTokens:    true,
		KeepTagLines:       true,
		CollapseWhitespace: true,
		NormalizeUnicode:   true,
		Glitches:           append([]GlitchRule(nil), DefaultGlitches...),
		Classifier:         script.Default(),
	}
}

func IsOpenTag(line string) bool {
	return tagOpenRe.MatchString(line)
}

func IsCloseTag(line string) bool {
	return tagCloseRe.MatchString(line)
}

func IsTagLine(line string) bool {
	return IsOpenTag(line) || IsCloseTag(line)
}

// CleanLines filters lines one by one, keeping their order.
func CleanLines(lines []string, cfg Config) []string {
	compound := compoundRe(cfg.Classifier)
	out := make([]string, 0, len(lines))
	lastLine := ""
	lastCount := 0
	haveLast := false

	for _, raw := range lines {
		line := raw
		if cfg.NormalizeUnicode {
			line = norm.NFC.String(line)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if cfg.CollapseWhitespace {
			line = spaceRunRe.ReplaceAllString(line, " ")
		}

		if cfg.KeepTagLines && IsTagLine(line) {
			out = append(out, line)
			lastLine, lastCount, haveLast = line, 0, true
			continue
		}

		if cfg.DropForeignLines && cfg.Classifier.HasForeign(line) {
			continue
		}
		if cfg.DropMixedTokens && hasMixedToken(line, cfg.Classifier) {
			continue
		}
		if isGlitch(line, compound, cfg.Glitches) {
			continue
		}
		if len(strings.Fields(line)) < cfg.MinWordsPerLine {
			continue
		}

		if haveLast && lastLine == line {
			lastCount++
			if lastCount >= cfg.MaxSameLineRepeats {
				continue
			}
		} else {
			lastLine, lastCount, haveLast = line, 0, true
		}
		out = append(out, line)
	}
	return out
}

// Clean filters raw model output and joins the kept lines.
func Clean(raw string, cfg Config) string {
	return strings.Join(CleanLines(strings.Split(raw, "\n"), cfg), "\n")
}

// CleanSection filters raw and restores the structural tags when the filter
// removed them: the first open tag and the last close tag of raw are put back
// around the output.
func CleanSection(raw string, cfg Config) string {
	cleaned := CleanLines(strings.Split(raw, "\n"), cfg)

	openLine, closeLine, ok := detectTags(raw)
	if ok {
		if len(cleaned) == 0 || !IsOpenTag(cleaned[0]) {
			cleaned = append([]string{openLine}, cleaned...)
		}
		if !IsCloseTag(cleaned[len(cleaned)-1]) && closeLine != "" {
			cleaned = append(cleaned, closeLine)
		}
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}

// ContentLines returns the trimmed non-empty lines of text that are not tags.
func ContentLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" || IsTagLine(ln) {
			continue
		}
		out = append(out, ln)
	}
	return out
}

func CountContentLines(text string) int {
	return len(ContentLines(text))
}

func detectTags(raw string) (openLine, closeLine string, ok bool) {
	lines := strings.Split(raw, "\n")
	for _, ln := range lines {
		ln = strings.TrimSpace(ln)
		if IsOpenTag(ln) {
			openLine = ln
			ok = true
			break
		}
	}
	for i := len(lines) - 1; i >= 0; i-- {
		ln := strings.TrimSpace(lines[i])
		if IsCloseTag(ln) {
			closeLine = ln
			break
		}
	}
	return openLine, closeLine, ok
}

func hasMixedToken(line string, c script.Classifier) bool {
	for _, tok := range strings.Fields(line) {
		if c.Mixed(tok) {
			return true
		}
	}
	return false
}

func compoundRe(c script.Classifier) *regexp.Regexp {
	class := regexp.QuoteMeta(c.Native.String())
	re, err := regexp.Compile("[" + class + "]+-[" + class + "]+")
	if err != nil {
		return nil
	}
	return re
}

func isGlitch(line string, compound *regexp.Regexp, rules []GlitchRule) bool {
	if compound == nil || len(rules) == 0 || !compound.MatchString(line) {
		return false
	}
	for _, r := range rules {
		if r.Marker == "" {
			continue
		}
		if strings.Contains(line, r.Marker) && (r.Allow == "" || !strings.Contains(line, r.Allow)) {
			return true
		}
	}
	return false
}
