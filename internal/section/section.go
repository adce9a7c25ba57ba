// Package section locates and replaces the heading-delimited sections of a
// templated study note.
package section

import (
	"iter"
	"strings"
)

// HeadingPrefix starts every section heading of the note template.
const HeadingPrefix = "## SECTION "

// Required headings, matched exactly against the trimmed heading line.
const (
	Intro    = "## SECTION 1: INTRODUCTION/OVERVIEW"
	Concepts = "## SECTION 2: KEY CONCEPTS/DEFINITIONS"
	Evidence = "## SECTION 3: EVIDENCE/SUPPORTING DETAILS"
)

// Required lists the recognized headings in template order.
var Required = []string{Intro, Concepts, Evidence}

// Section is a heading span of a note.
type Section struct {
	Span
	Heading string
}

// Title returns the trimmed heading line.
func (s Section) Title() string {
	return strings.TrimSpace(s.Heading)
}

// Scan yields every section of text in document order.
func Scan(text string) iter.Seq[Section] {
	return func(yield func(Section) bool) {
		for sp := range Spans(text, Prefix(HeadingPrefix)) {
			if !yield(Section{Span: sp, Heading: sp.Head(text)}) {
				return
			}
		}
	}
}

// Find returns the first section whose trimmed heading equals heading.
func Find(text, heading string) (Section, error) {
	for s := range Scan(text) {
		if s.Title() == heading {
			return s, nil
		}
	}
	return Section{}, &StructureError{Missing: heading}
}

// Introduction returns the trimmed body of the introduction section.
func Introduction(text string) (string, error) {
	s, err := Find(text, Intro)
	if err != nil {
		return "", err
	}
	return s.Body(text), nil
}
