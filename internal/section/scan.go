package section

import (
	"iter"
	"strings"
)

// Matcher returns the byte offset of the next match in text at or after
// from, or -1 when there is none.
type Matcher func(text string, from int) int

// Span is a region of a document delimited by matcher hits. Head is the
// matched line, End is the start of the next hit or end of text.
type Span struct {
	Start   int
	HeadEnd int
	End     int
}

// Head returns the matched line without its newline.
func (s Span) Head(text string) string {
	return text[s.Start:s.HeadEnd]
}

// Body returns the trimmed text between the head line and End.
func (s Span) Body(text string) string {
	return strings.TrimSpace(text[s.HeadEnd:s.End])
}

// Prefix matches every occurrence of p, wherever it appears in a line.
func Prefix(p string) Matcher {
	return func(text string, from int) int {
		if from > len(text) {
			return -1
		}
		i := strings.Index(text[from:], p)
		if i < 0 {
			return -1
		}
		return from + i
	}
}

// Line matches the start of the first line at or after from whose content
// satisfies pred. A from offset inside a line skips to the next line.
func Line(pred func(line string) bool) Matcher {
	return func(text string, from int) int {
		if from > 0 && from <= len(text) && text[from-1] != '\n' {
			nl := strings.IndexByte(text[from:], '\n')
			if nl < 0 {
				return -1
			}
			from += nl + 1
		}
		for from < len(text) {
			end := lineEnd(text, from)
			if pred(text[from:end]) {
				return from
			}
			from = end + 1
		}
		return -1
	}
}

// Spans yields every span of text delimited by m, in document order. The
// sequence is recomputed on each range.
func Spans(text string, m Matcher) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		start := m(text, 0)
		for start >= 0 {
			headEnd := lineEnd(text, start)
			next := m(text, max(headEnd, start+1))
			end := next
			if end < 0 {
				end = len(text)
			}
			if !yield(Span{Start: start, HeadEnd: headEnd, End: end}) {
				return
			}
			start = next
		}
	}
}

func lineEnd(text string, from int) int {
	if nl := strings.IndexByte(text[from:], '\n'); nl >= 0 {
		return from + nl
	}
	return len(text)
}
