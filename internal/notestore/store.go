// Package notestore reads source notes and writes enhanced notes to an
// output directory.
package notestore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Read returns the full text of the note at path.
func Read(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read note: %w", err)
	}
	return string(data), nil
}

// Dir is an output directory. It is created on first write.
type Dir struct {
	Path string
}

// Destination returns where a note named like source is written.
func (d Dir) Destination(source string) string {
	return filepath.Join(d.Path, filepath.Base(source))
}

// Write stores text under the base name of source, replacing any existing
// file, and returns the written path.
func (d Dir) Write(source, text string) (string, error) {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	dest := d.Destination(source)
	if err := os.WriteFile(dest, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write note: %w", err)
	}
	return dest, nil
}

// WriteNew stores text under name without overwriting. When name is taken,
// on disk or in taken, a numeric suffix is added before the extension.
// The chosen name is added to taken.
func (d Dir) WriteNew(name, text string, taken map[string]bool) (string, error) {
	if err := os.MkdirAll(d.Path, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := name
	for n := 2; ; n++ {
		if !taken[candidate] {
			dest := filepath.Join(d.Path, candidate)
			f, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
			if err == nil {
				_, werr := f.WriteString(text)
				cerr := f.Close()
				if werr != nil {
					return "", fmt.Errorf("write note: %w", werr)
				}
				if cerr != nil {
					return "", fmt.Errorf("write note: %w", cerr)
				}
				if taken != nil {
					taken[candidate] = true
				}
				return dest, nil
			}
			if !errors.Is(err, fs.ErrExist) {
				return "", fmt.Errorf("create note: %w", err)
			}
		}
		candidate = stem + "-" + strconv.Itoa(n) + ext
	}
}
