// Package reply decodes model completions into replacement sections and
// tags.
package reply

import (
	"fmt"
	"strings"
)

// Format selects which reply shape the model is asked for.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatJSON:
		return f, nil
	case "":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("unknown reply format %q", s)
	}
}

// Kind tells which shape a Reply was decoded from.
type Kind int

const (
	Plain Kind = iota
	Structured
)

func (k Kind) String() string {
	if k == Structured {
		return "structured"
	}
	return "plain"
}

// Reply is a decoded model completion.
type Reply struct {
	Kind        Kind
	Replacement string
	// Tags is nil for plain replies and never empty for structured ones.
	Tags []string
}

// HasTags reports whether the reply carries a tag list.
func (r Reply) HasTags() bool {
	return len(r.Tags) > 0
}
