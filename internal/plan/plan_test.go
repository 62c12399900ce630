package plan

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		expr string
		want Plan
	}{
		{
			name: "basic",
			expr: "VERSE(speransky) > CHORUS(alekhin) > OUTRO(alekhin)",
			want: Plan{
				{Type: Verse, Speaker: "speransky", Index: 1},
				{Type: Chorus, Speaker: "alekhin"},
				{Type: Outro, Speaker: "alekhin"},
			},
		},
		{
			name: "verse numbering and normalization",
			expr: " verse( Speransky )>>Chorus(group) > VERSE(alekhin) >",
			want: Plan{
				{Type: Verse, Speaker: "speransky", Index: 1},
				{Type: Chorus, Speaker: "group"},
				{Type: Verse, Speaker: "alekhin", Index: 2},
			},
		},
		{
			name: "canonical summary form",
			expr: "INTRO(group) > VERSE1(speransky) > HOOK(group) > VERSE3(alekhin)",
			want: Plan{
				{Type: Intro, Speaker: "group"},
				{Type: Verse, Speaker: "speransky", Index: 1},
				{Type: Hook, Speaker: "group"},
				{Type: Verse, Speaker: "alekhin", Index: 3},
			},
		},
		{
			name: "explicit index moves the verse counter",
			expr: "VERSE2(a) > VERSE(b) > CHORUS(c) > VERSE(d)",
			want: Plan{
				{Type: Verse, Speaker: "a", Index: 2},
				{Type: Verse, Speaker: "b", Index: 3},
				{Type: Chorus, Speaker: "c"},
				{Type: Verse, Speaker: "d", Index: 4},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.expr)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, expr := range []string{
		"",
		" > > ",
		"VERSE speransky",
		"VERSE)speransky(",
		"SOLO(alekhin)",
		"CHORUS2(alekhin)",
		"VERSE()",
		"VERSE(big voice)",
		"VERSE0(alekhin)",
		"VERSE(alekhin) tail",
	} {
		t.Run(expr, func(t *testing.T) {
			_, err := Parse(expr)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidStructure))
			var pe *ParseError
			assert.True(t, errors.As(err, &pe))
		})
	}
}

func TestSectionTags(t *testing.T) {
	v := Section{Type: Verse, Speaker: "speransky", Index: 1}
	assert.Equal(t, "<VERSE index=1 speaker=speransky>", v.OpenTag())
	assert.Equal(t, "</VERSE>", v.CloseTag())

	c := Section{Type: Chorus, Speaker: "alekhin"}
	assert.Equal(t, "<CHORUS speaker=alekhin>", c.OpenTag())
	assert.Equal(t, "</CHORUS>", c.CloseTag())
}

func TestPlanString(t *testing.T) {
	p, err := Parse("VERSE(speransky) > CHORUS(alekhin)")
	require.NoError(t, err)
	assert.Equal(t, "VERSE1(speransky) > CHORUS(alekhin)", p.String())
}
