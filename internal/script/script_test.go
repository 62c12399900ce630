package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClass_Presets(t *testing.T) {
	c, err := ParseClass("Cyrillic")
	require.NoError(t, err)
	assert.True(t, c.Contains('ж'))
	assert.True(t, c.Contains('Ё'))
	assert.False(t, c.Contains('z'))
	assert.Equal(t, "А-Яа-яЁё", c.String())
}

func TestParseClass_Invalid(t *testing.T) {
	_, err := ParseClass("")
	require.Error(t, err)
	_, err = ParseClass("z-a")
	require.Error(t, err)
}

func TestParseClass_SingleRunesAndRanges(t *testing.T) {
	c, err := ParseClass("a-cx")
	require.NoError(t, err)
	assert.True(t, c.Contains('b'))
	assert.True(t, c.Contains('x'))
	assert.False(t, c.Contains('d'))
}

func TestClassifier_Count(t *testing.T) {
	c := Default()
	native, foreign := c.Count("привет, world 42")
	assert.Equal(t, 6, native)
	assert.Equal(t, 5, foreign)
}

func TestClassifier_Mixed(t *testing.T) {
	c := Default()
	assert.True(t, c.Mixed("findeют"))
	assert.False(t, c.Mixed("ищут"))
	assert.False(t, c.Mixed("find"))
	assert.False(t, c.Mixed("42"))
}

func TestClassifier_HasForeign(t *testing.T) {
	c := Default()
	assert.True(t, c.HasForeign("город в ночи x"))
	assert.False(t, c.HasForeign("город в ночи"))
}

func TestNew_CustomScripts(t *testing.T) {
	c, err := New("latin", "cyrillic")
	require.NoError(t, err)
	assert.True(t, c.HasForeign("abc д"))

	_, err = New("", "latin")
	require.Error(t, err)
}
