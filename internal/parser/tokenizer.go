// Package parser extracts inline markers from annotation notes and turns EPUB
// CFI locations into sortable keys.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/starford/hlts/internal/apperr"
)

// spaceClass is the set of runes treated as whitespace when delimiting a
// marker. It is wider than RE2's \s so that no-break and other Unicode spaces
// end a marker too.
const spaceClass = `\s\v\p{Z}\x{1c}-\x{1f}\x{85}`

// Tokenizer finds markers made of a single prefix rune followed by a run of
// non-space runes, e.g. "#idea" or "@reading-list".
type Tokenizer struct {
	re *regexp.Regexp
}

// NewTokenizer builds a tokenizer for prefix. The prefix must be exactly one
// printable, non-whitespace rune; it is matched literally.
func NewTokenizer(prefix string) (*Tokenizer, error) {
	r, size := utf8.DecodeRuneInString(prefix)
	if prefix == "" || size != len(prefix) || r == utf8.RuneError {
		return nil, fmt.Errorf("parser: prefix %q must be a single character: %w", prefix, apperr.ErrConfigurationInvalid)
	}
	if unicode.IsSpace(r) || !unicode.IsPrint(r) {
		return nil, fmt.Errorf("parser: prefix %q must be printable and not whitespace: %w", prefix, apperr.ErrConfigurationInvalid)
	}

	lit := fmt.Sprintf(`\x{%x}`, r)
	re, err := regexp.Compile(lit + `([^` + lit + spaceClass + `]+)[` + spaceClass + `]?`)
	if err != nil {
		return nil, fmt.Errorf("parser: compile pattern for %q: %w", prefix, err)
	}
	return &Tokenizer{re: re}, nil
}

// Extract returns the markers in text in order of first occurrence, without
// the prefix and without duplicates, together with text with every marker
// (and the one whitespace rune following it) removed.
//
// Removing a marker can leave a new one at a word boundary ("#a#b" becomes
// "#b"), so extraction repeats until the remaining text holds no marker.
func (t *Tokenizer) Extract(text string) ([]string, string) {
	tokens := []string{}
	seen := make(map[string]struct{})
	for {
		matches := t.matches(text)
		if len(matches) == 0 {
			return tokens, text
		}
		for _, m := range matches {
			tok := text[m[2]:m[3]]
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			tokens = append(tokens, tok)
		}
		text = cut(text, matches)
	}
}

// Tokens returns the markers found by Extract.
func (t *Tokenizer) Tokens(text string) []string {
	tokens, _ := t.Extract(text)
	return tokens
}

// Strip returns text with the markers found by Extract removed.
func (t *Tokenizer) Strip(text string) string {
	_, rest := t.Extract(text)
	return rest
}

// matches returns submatch indexes of the markers that start at a non-word
// boundary: a marker glued to a preceding letter, digit or underscore
// ("mail@example") is not a marker.
func (t *Tokenizer) matches(text string) [][]int {
	if text == "" {
		return nil
	}
	var out [][]int
	for _, m := range t.re.FindAllStringSubmatchIndex(text, -1) {
		if m[0] > 0 {
			prev, _ := utf8.DecodeLastRuneInString(text[:m[0]])
			if isWordRune(prev) {
				continue
			}
		}
		out = append(out, m)
	}
	return out
}

func cut(text string, spans [][]int) string {
	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range spans {
		b.WriteString(text[last:m[0]])
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
