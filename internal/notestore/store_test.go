package notestore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirWrite_CreatesDirAndKeepsName(t *testing.T) {
	out := Dir{Path: filepath.Join(t.TempDir(), "nested", "out")}
	dest, err := out.Write("/some/where/note.md", "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest != filepath.Join(out.Path, "note.md") {
		t.Errorf("unexpected destination %q", dest)
	}
	got, err := Read(dest)
	if err != nil || got != "hello" {
		t.Fatalf("expected written text, got %q (%v)", got, err)
	}
}

func TestDirWrite_Overwrites(t *testing.T) {
	out := Dir{Path: t.TempDir()}
	if _, err := out.Write("n.md", "one"); err != nil {
		t.Fatal(err)
	}
	dest, err := out.Write("n.md", "two")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := Read(dest); got != "two" {
		t.Errorf("expected overwrite, got %q", got)
	}
}

func TestDirWriteNew_AvoidsCollisions(t *testing.T) {
	out := Dir{Path: t.TempDir()}
	if err := os.WriteFile(filepath.Join(out.Path, "a.md"), []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}
	taken := map[string]bool{}

	first, err := out.WriteNew("a.md", "1", taken)
	if err != nil {
		t.Fatal(err)
	}
	second, err := out.WriteNew("a.md", "2", taken)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(first) != "a-2.md" || filepath.Base(second) != "a-3.md" {
		t.Fatalf("unexpected names %q, %q", first, second)
	}
	if got, _ := Read(filepath.Join(out.Path, "a.md")); got != "existing" {
		t.Errorf("existing file was modified: %q", got)
	}
}

func TestRead_Missing(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.md")); err == nil {
		t.Fatal("expected error for missing note")
	}
}
