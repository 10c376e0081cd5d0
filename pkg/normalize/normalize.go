// Package normalize canonicalizes strings and fields for comparison.
// Normalized values are never written to a merged record.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/agentstation/marcmerge/pkg/record"
)

// punctuation is replaced by a single space.
const punctuation = ".,-/#!$%^&*;:{}=_`~()"

// String folds diacritics and ligatures to ASCII base letters, lowercases,
// turns punctuation into spaces, collapses whitespace runs and trims.
// It is deterministic and idempotent.
func String(s string) string {
	s = foldLetters(s)
	s = cases.Lower(language.Und).String(s)
	s = strings.Map(func(r rune) rune {
		if strings.ContainsRune(punctuation, r) {
			return ' '
		}
		return r
	}, s)
	return strings.TrimSpace(collapseWhitespace(s))
}

// Field returns a deep copy of f with every subfield value (or the control
// value) normalized. f is not modified.
func Field(f *record.Field) *record.Field {
	c := f.Clone()
	if c.IsControl() {
		c.Value = String(c.Value)
		return c
	}
	for i := range c.Subfields {
		c.Subfields[i].Value = String(c.Subfields[i].Value)
	}
	return c
}

// foldLetters decomposes Latin letters, drops their combining marks and maps
// letters without a canonical decomposition through baseLetters. Other
// scripts pass through unchanged, marks included.
func foldLetters(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	latinBase := false
	for _, r := range s {
		switch {
		case unicode.Is(unicode.Mn, r):
			if !latinBase {
				b.WriteRune(r)
			}
		case unicode.Is(unicode.Latin, r):
			latinBase = true
			for _, d := range norm.NFD.String(string(r)) {
				if unicode.Is(unicode.Mn, d) {
					continue
				}
				writeBase(&b, d)
			}
		default:
			latinBase = false
			writeBase(&b, r)
		}
	}
	return b.String()
}

func writeBase(b *strings.Builder, r rune) {
	if base, ok := baseLetters[r]; ok {
		b.WriteString(base)
		return
	}
	b.WriteRune(r)
}

// collapseWhitespace replaces every run of two or more whitespace
// characters with one space. A lone whitespace character is kept as is.
func collapseWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	runStart := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		if runStart >= 0 {
			writeRun(&b, s[runStart:i])
			runStart = -1
		}
		b.WriteRune(r)
	}
	if runStart >= 0 {
		writeRun(&b, s[runStart:])
	}
	return b.String()
}

func writeRun(b *strings.Builder, run string) {
	if len([]rune(run)) > 1 {
		b.WriteByte(' ')
		return
	}
	b.WriteString(run)
}
