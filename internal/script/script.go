package script

import (
	"fmt"
	"strings"
)

// Presets maps the named classes accepted in configuration to their
// character-class expressions.
var Presets = map[string]string{
	"cyrillic": "А-Яа-яЁё",
	"latin":    "A-Za-z",
}

type runeRange struct {
	lo, hi rune
}

// Class is a set of letters described by a character-class expression such
// as "А-Яа-яЁё".
type Class struct {
	expr   string
	ranges []runeRange
}

// ParseClass accepts either a preset name or a class expression made of
// single runes and lo-hi ranges.
func ParseClass(expr string) (Class, error) {
	expr = strings.TrimSpace(expr)
	if preset, ok := Presets[strings.ToLower(expr)]; ok {
		expr = preset
	}
	if expr == "" {
		return Class{}, fmt.Errorf("empty character class")
	}

	runes := []rune(expr)
	var ranges []runeRange
	for i := 0; i < len(runes); i++ {
		lo := runes[i]
		if i+2 < len(runes) && runes[i+1] == '-' {
			hi := runes[i+2]
			if hi < lo {
				return Class{}, fmt.Errorf("invalid range %c-%c in %q", lo, hi, expr)
			}
			ranges = append(ranges, runeRange{lo: lo, hi: hi})
			i += 2
			continue
		}
		ranges = append(ranges, runeRange{lo: lo, hi: lo})
	}
	return Class{expr: expr, ranges: ranges}, nil
}

// MustParseClass is like ParseClass but panics on error.
func MustParseClass(expr string) Class {
	c, err := ParseClass(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Class) Contains(r rune) bool {
	for _, rr := range c.ranges {
		if r >= rr.lo && r <= rr.hi {
			return true
		}
	}
	return false
}

// String returns the expanded class expression, suitable for embedding in a
// regular expression bracket.
func (c Class) String() string {
	return c.expr
}

// Classifier separates the script output must use (native) from the one it
// must not (foreign).
type Classifier struct {
	Native  Class
	Foreign Class
}

// Default is Cyrillic native, Latin foreign.
func Default() Classifier {
	return Classifier{
		Native:  MustParseClass("cyrillic"),
		Foreign: MustParseClass("latin"),
	}
}

// New builds a classifier from two class expressions or preset names.
func New(native, foreign string) (Classifier, error) {
	n, err := ParseClass(native)
	if err != nil {
		return Classifier{}, fmt.Errorf("native script: %w", err)
	}
	f, err := ParseClass(foreign)
	if err != nil {
		return Classifier{}, fmt.Errorf("foreign script: %w", err)
	}
	return Classifier{Native: n, Foreign: f}, nil
}

// Count returns the number of native and foreign letters in s.
func (c Classifier) Count(s string) (native, foreign int) {
	for _, r := range s {
		switch {
		case c.Native.Contains(r):
			native++
		case c.Foreign.Contains(r):
			foreign++
		}
	}
	return native, foreign
}

func (c Classifier) HasForeign(s string) bool {
	for _, r := range s {
		if c.Foreign.Contains(r) {
			return true
		}
	}
	return false
}

// Mixed reports whether token contains letters of both scripts.
func (c Classifier) Mixed(token string) bool {
	hasNative, hasForeign := false, false
	for _, r := range token {
		if c.Native.Contains(r) {
			hasNative = true
		} else if c.Foreign.Contains(r) {
			hasForeign = true
		}
		if hasNative && hasForeign {
			return true
		}
	}
	return false
}
