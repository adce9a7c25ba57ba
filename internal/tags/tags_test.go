package tags

import (
	"errors"
	"slices"
	"testing"

	"github.com/dgallion1/notegest/internal/section"
)

func TestCanonicalize_DedupKeepsFirst(t *testing.T) {
	got, err := Canonicalize([]string{"Go", "go", "rust", "  Go  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Go", "rust"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCanonicalize_AllBlank(t *testing.T) {
	_, err := Canonicalize([]string{" ", "\t", ""})
	if !errors.Is(err, ErrNoTags) {
		t.Fatalf("expected ErrNoTags, got %v", err)
	}
	if !section.IsSchema(err) {
		t.Errorf("expected schema error, got %T", err)
	}
}

func TestSerialize_Compact(t *testing.T) {
	got, err := Serialize([]string{"a", "b & c", "naïve", "<x>"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `["a","b & c","naïve","<x>"]`
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestRewrite_ReplacesValue(t *testing.T) {
	text := "---\ntitle: x\ntags: [\"old\"]\n---\nbody\n"
	got, err := Rewrite(text, []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "---\ntitle: x\ntags: [\"a\",\"b\"]\n---\nbody\n"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRewrite_KeepsIndentAndCRLF(t *testing.T) {
	text := "meta:\r\n  tags: old, stuff\r\nrest"
	got, err := Rewrite(text, []string{"x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "meta:\r\n  tags: [\"x\"]\r\nrest"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRewrite_OnlyFirstLine(t *testing.T) {
	text := "tags: []\nbody\ntags: [\"keep\"]"
	got, err := Rewrite(text, []string{"new"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "tags: [\"new\"]\nbody\ntags: [\"keep\"]"
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestRewrite_Idempotent(t *testing.T) {
	text := "tags: []\n"
	once, err := Rewrite(text, []string{"Go", "go", "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := Rewrite(once, []string{"Go", "go", "rust"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if once != twice || once != "tags: [\"Go\",\"rust\"]\n" {
		t.Fatalf("expected stable rewrite, got %q then %q", once, twice)
	}
}

func TestRewrite_MissingField(t *testing.T) {
	_, err := Rewrite("no field here\n", []string{"a"})
	var se *section.StructureError
	if !errors.As(err, &se) {
		t.Fatalf("expected StructureError, got %v", err)
	}
	if se.Missing != Field {
		t.Errorf("expected missing %q, got %q", Field, se.Missing)
	}
}

func TestRewrite_EmptyTagsFailsBeforeLookup(t *testing.T) {
	_, err := Rewrite("tags: [\"old\"]\n", []string{"  "})
	if !errors.Is(err, ErrNoTags) {
		t.Fatalf("expected ErrNoTags, got %v", err)
	}
}

func TestCurrent(t *testing.T) {
	got, err := Current("title: t\ntags: [\"old\", new]\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(got, []string{"old", "new"}) {
		t.Fatalf("unexpected tags %v", got)
	}

	got, err = Current("tags:\n")
	if err != nil || got != nil {
		t.Fatalf("expected no tags, got %v (%v)", got, err)
	}
}
