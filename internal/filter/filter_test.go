package filter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanLines_DropsForeignMixedAndShortLines(t *testing.T) {
	cfg := DefaultConfig()
	in := []string{
		"   ",
		"город спит под снегом",
		"мы идём в the night",
		"мы findeют свой дом",
		"два слова",
		"ночь    глотает    фонари",
	}
	got := CleanLines(in, cfg)
	assert.Equal(t, []string{
		"город спит под снегом",
		"ночь глотает фонари",
	}, got)
}

func TestCleanLines_KeepsTagsVerbatim(t *testing.T) {
	cfg := DefaultConfig()
	got := CleanLines([]string{"<VERSE index=1 speaker=alekhin>", "ok", "</VERSE>"}, cfg)
	assert.Equal(t, []string{"<VERSE index=1 speaker=alekhin>", "</VERSE>"}, got)

	cfg.KeepTagLines = false
	got = CleanLines([]string{"<CHORUS speaker=group>"}, cfg)
	assert.Empty(t, got)
}

func TestCleanLines_CapsConsecutiveRepeats(t *testing.T) {
	cfg := DefaultConfig()
	line := "я снова стою на перроне"
	other := "поезд уходит без меня"
	in := []string{line, line, line, line, other, line, line, line}
	got := CleanLines(in, cfg)
	assert.Equal(t, []string{line, line, other, line, line}, got)
	assertMaxRun(t, got, cfg.MaxSameLineRepeats)
}

func TestCleanLines_TagResetsRepeatTracker(t *testing.T) {
	cfg := DefaultConfig()
	line := "я снова стою на перроне"
	in := []string{line, line, line, "</VERSE>", line, line, line}
	got := CleanLines(in, cfg)
	assert.Equal(t, []string{line, line, "</VERSE>", line, line}, got)
}

func TestCleanLines_RepeatCapProperty(t *testing.T) {
	cfg := DefaultConfig()
	lines := []string{"раз два три", "четыре пять шесть"}
	for seed := 0; seed < 50; seed++ {
		var in []string
		for i := 0; i < 30; i++ {
			in = append(in, lines[(i*seed/7+i/3)%2])
		}
		assertMaxRun(t, CleanLines(in, cfg), 2)
	}
}

func TestCleanLines_GlitchRule(t *testing.T) {
	cfg := DefaultConfig()
	got := CleanLines([]string{
		"всё по-прежему темно вокруг",
		"всё по-прежнему темно вокруг",
		"кто-нибудь ответит мне сегодня",
	}, cfg)
	assert.Equal(t, []string{
		"всё по-прежнему темно вокруг",
		"кто-нибудь ответит мне сегодня",
	}, got)
}

func TestCleanLines_NormalizesDecomposedLetters(t *testing.T) {
	cfg := DefaultConfig()
	decomposed := "е\u0308лка горит во дворе"
	got := CleanLines([]string{decomposed}, cfg)
	require.Len(t, got, 1)
	assert.Equal(t, "\u0451лка горит во дворе", got[0])
}

func TestCleanSection_RepairsLostTags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.KeepTagLines = false
	raw := "<VERSE index=1 speaker=alekhin>\nгород спит под снегом\n</VERSE>"
	got := CleanSection(raw, cfg)
	assert.Equal(t, raw, got)
}

func TestCleanSection_TagsOnlyWhenContentFiltered(t *testing.T) {
	raw := "<VERSE index=1 speaker=alekhin>\nok\n</VERSE>"
	got := CleanSection(raw, DefaultConfig())
	assert.Equal(t, "<VERSE index=1 speaker=alekhin>\n</VERSE>", got)
	assert.Len(t, strings.Split(got, "\n"), 2)
}

func TestCleanSection_NoTagsSkipsRepair(t *testing.T) {
	raw := "город спит под снегом\nночь глотает фонари"
	assert.Equal(t, raw, CleanSection(raw, DefaultConfig()))
}

func TestCleanSection_Idempotent(t *testing.T) {
	cfg := DefaultConfig()
	raw := strings.Join([]string{
		"  <CHORUS speaker=group>",
		"мы горим   как спички",
		"мы горим   как спички",
		"мы горим   как спички",
		"hello world again",
		"и пепел падает на крыши",
		"</CHORUS>",
		"",
	}, "\n")
	once := CleanSection(raw, cfg)
	twice := CleanSection(once, cfg)
	assert.Equal(t, once, twice)
}

func TestContentLines(t *testing.T) {
	text := "<OUTRO speaker=alekhin>\nраз два три\n\n  четыре пять шесть \n</OUTRO>"
	assert.Equal(t, []string{"раз два три", "четыре пять шесть"}, ContentLines(text))
	assert.Equal(t, 2, CountContentLines(text))
}

func TestTagPredicates(t *testing.T) {
	assert.True(t, IsOpenTag("<VERSE index=1 speaker=x>"))
	assert.True(t, IsOpenTag("<HOOK>"))
	assert.False(t, IsOpenTag("</HOOK>"))
	assert.True(t, IsCloseTag(" </HOOK> "))
	assert.False(t, IsTagLine("<verse>"))
}

func assertMaxRun(t *testing.T, lines []string, max int) {
	t.Helper()
	run := 0
	prev := ""
	for _, ln := range lines {
		if IsTagLine(ln) {
			run, prev = 0, ""
			continue
		}
		if ln == prev {
			run++
		} else {
			run, prev = 1, ln
		}
		require.LessOrEqual(t, run, max, "line %q repeated %d times in a row", ln, run)
	}
}
