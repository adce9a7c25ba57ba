// Package tags rewrites the tags field of a note.
package tags

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/notegest/internal/section"
)

// Field is the token that starts the tags line.
const Field = "tags:"

// ErrNoTags is returned when no tag survives canonicalization.
var ErrNoTags = section.ErrNoTags

var fieldMatcher = section.Line(func(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), Field)
})

// Canonicalize trims each tag, drops empties and removes case-insensitive
// duplicates. The first spelling and the input order win.
func Canonicalize(in []string) ([]string, error) {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil, &section.SchemaError{Kind: ErrNoTags, Detail: fmt.Sprintf("%d tags supplied, none usable", len(in))}
	}
	return out, nil
}

// Serialize renders tags as a compact JSON array. HTML and non-ASCII
// characters are written literally.
func Serialize(tags []string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(tags); err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// FindField returns the first line of text that starts with the tags token.
// The line may be anywhere in the document.
func FindField(text string) (section.Span, error) {
	for sp := range section.Spans(text, fieldMatcher) {
		return sp, nil
	}
	return section.Span{}, &section.StructureError{Missing: Field}
}

// Rewrite replaces the value of the first tags line with the canonical form
// of in. Everything else in text is left untouched.
func Rewrite(text string, in []string) (string, error) {
	canon, err := Canonicalize(in)
	if err != nil {
		return "", err
	}
	value, err := Serialize(canon)
	if err != nil {
		return "", err
	}
	sp, err := FindField(text)
	if err != nil {
		return "", err
	}

	line := sp.Head(text)
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	valueStart := sp.Start + indent + len(Field)
	valueEnd := sp.HeadEnd
	if strings.HasSuffix(line, "\r") {
		valueEnd--
	}
	return text[:valueStart] + " " + value + text[valueEnd:], nil
}

// Current parses the value of the first tags line. An empty value yields no
// tags.
func Current(text string) ([]string, error) {
	sp, err := FindField(text)
	if err != nil {
		return nil, err
	}
	line := strings.TrimSpace(sp.Head(text))
	raw := strings.TrimSpace(strings.TrimPrefix(line, Field))
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := yaml.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("parse tags value %q: %w", raw, err)
	}
	return out, nil
}
