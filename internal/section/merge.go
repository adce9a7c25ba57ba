package section

import (
	"fmt"
	"strings"
)

// Targets are the sections replaced by Merge, first to last.
var Targets = []string{Concepts, Evidence}

// CheckReplacement verifies that replacement carries every target heading.
func CheckReplacement(replacement string) error {
	var missing []string
	for _, h := range Targets {
		if _, err := Find(replacement, h); err != nil {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		return &SchemaError{Kind: ErrMissingHeading, Detail: strings.Join(missing, ", ")}
	}
	return nil
}

// Bounds returns the offsets of the replaced span in original: from the
// start of the concepts heading to the end of the evidence section.
func Bounds(original string) (start, end int, err error) {
	concepts, err := Find(original, Concepts)
	if err != nil {
		return 0, 0, err
	}
	evidence, err := Find(original, Evidence)
	if err != nil {
		return 0, 0, err
	}
	if evidence.Start < concepts.Start {
		return 0, 0, &StructureError{
			Missing: Evidence,
			Reason:  fmt.Sprintf("%q appears before %q", Evidence, Concepts),
		}
	}
	return concepts.Start, evidence.End, nil
}

// PrefixOf returns the text kept before the replaced span.
func PrefixOf(original string) (string, error) {
	start, _, err := Bounds(original)
	if err != nil {
		return "", err
	}
	return original[:start], nil
}

// TailOf returns the text kept after the replaced span, leading newlines
// removed.
func TailOf(original string) (string, error) {
	_, end, err := Bounds(original)
	if err != nil {
		return "", err
	}
	return strings.TrimLeft(original[end:], "\n"), nil
}

// Merge replaces the concepts and evidence sections of original with the
// sections in replacement. Text outside that span is kept as is.
func Merge(original, replacement string) (string, error) {
	if err := CheckReplacement(replacement); err != nil {
		return "", err
	}
	start, end, err := Bounds(original)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.Grow(len(original) + len(replacement))
	sb.WriteString(original[:start])
	sb.WriteString(strings.TrimSpace(replacement))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimLeft(original[end:], "\n"))
	return sb.String(), nil
}
