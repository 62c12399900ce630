package plan

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type SectionType string

const (
	Verse   SectionType = "VERSE"
	Chorus  SectionType = "CHORUS"
	Bridge  SectionType = "BRIDGE"
	Intro   SectionType = "INTRO"
	Outro   SectionType = "OUTRO"
	Refrain SectionType = "REFRAIN"
	Hook    SectionType = "HOOK"
)

var Types = []SectionType{Verse, Chorus, Bridge, Intro, Outro, Refrain, Hook}

func ParseType(s string) (SectionType, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, t := range Types {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Section is one planned step of a song. Index is set only for verses.
type Section struct {
	Type    SectionType `json:"type"`
	Speaker string      `json:"speaker"`
	Index   int         `json:"index,omitempty"`
}

func (s Section) OpenTag() string {
	if s.Type == Verse && s.Index > 0 {
		return fmt.Sprintf("<%s index=%d speaker=%s>", s.Type, s.Index, s.Speaker)
	}
	return fmt.Sprintf("<%s speaker=%s>", s.Type, s.Speaker)
}

func (s Section) CloseTag() string {
	return fmt.Sprintf("</%s>", s.Type)
}

// Label renders the section the way structure expressions spell it.
func (s Section) Label() string {
	if s.Type == Verse && s.Index > 0 {
		return fmt.Sprintf("%s%d(%s)", s.Type, s.Index, s.Speaker)
	}
	return fmt.Sprintf("%s(%s)", s.Type, s.Speaker)
}

type Plan []Section

func (p Plan) String() string {
	labels := make([]string, 0, len(p))
	for _, s := range p {
		labels = append(labels, s.Label())
	}
	return strings.Join(labels, " > ")
}

var ErrInvalidStructure = errors.New("invalid structure expression")

type ParseError struct {
	Element string
	Reason  string
}

func (e *ParseError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidStructure, e.Reason)
	}
	return fmt.Sprintf("%s: element %q: %s", ErrInvalidStructure, e.Element, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidStructure
}

// Parse reads an expression such as
// "VERSE(speransky) > CHORUS(alekhin) > OUTRO(alekhin)". Verses are numbered
// from 1 in order of appearance unless the element carries an explicit index,
// as in "VERSE2(alekhin)".
func Parse(expr string) (Plan, error) {
	var out Plan
	verseIdx := 0
	for _, part := range strings.Split(expr, ">") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		open := strings.Index(part, "(")
		closing := strings.LastIndex(part, ")")
		if open < 0 || closing < open {
			return nil, &ParseError{Element: part, Reason: "expected TYPE(speaker)"}
		}
		if rest := strings.TrimSpace(part[closing+1:]); rest != "" {
			return nil, &ParseError{Element: part, Reason: "unexpected text after speaker"}
		}

		head := strings.TrimSpace(part[:open])
		name := strings.TrimRightFunc(head, unicode.IsDigit)
		digits := head[len(name):]

		typ, ok := ParseType(name)
		if !ok {
			return nil, &ParseError{Element: part, Reason: fmt.Sprintf("unknown section type %q", name)}
		}

		speaker := strings.ToLower(strings.TrimSpace(part[open+1 : closing]))
		if speaker == "" {
			return nil, &ParseError{Element: part, Reason: "missing speaker"}
		}
		if strings.IndexFunc(speaker, unicode.IsSpace) >= 0 {
			return nil, &ParseError{Element: part, Reason: "speaker must be a single token"}
		}

		sec := Section{Type: typ, Speaker: speaker}
		if typ == Verse {
			verseIdx++
			sec.Index = verseIdx
			if digits != "" {
				n, err := strconv.Atoi(digits)
				if err != nil || n < 1 {
					return nil, &ParseError{Element: part, Reason: "verse index must be a positive integer"}
				}
				sec.Index = n
				verseIdx = n
			}
		} else if digits != "" {
			return nil, &ParseError{Element: part, Reason: "only verses carry an index"}
		}
		out = append(out, sec)
	}
	if len(out) == 0 {
		return nil, &ParseError{Reason: "no sections"}
	}
	return out, nil
}
