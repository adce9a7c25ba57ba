package enhance

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/dgallion1/notegest/internal/notestore"
)

// ErrDuplicateDest marks a batch note whose output file is already claimed
// by an earlier note of the same batch.
var ErrDuplicateDest = errors.New("output file already used by another note in the batch")

// FileResult is the outcome for one note of a batch.
type FileResult struct {
	Source string
	Dest   string
	Err    error
}

// EnhanceFile enhances the note at path and writes it into out under the
// same file name.
func (e *Enhancer) EnhanceFile(ctx context.Context, path string, out notestore.Dir) (string, error) {
	text, err := notestore.Read(path)
	if err != nil {
		return "", err
	}
	res, err := e.Enhance(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	dest, err := out.Write(path, res.Text)
	if err != nil {
		return "", err
	}
	e.log.Info("enhanced note written", "source", path, "dest", dest, "tags_rewritten", res.TagsRewritten)
	return dest, nil
}

// EnhanceFiles enhances every note independently, at most limit at a time.
// A failing note never stops the others; results keep the input order.
// Notes sharing a base name would overwrite each other, so only the first
// of them is enhanced and the rest fail with ErrDuplicateDest.
func (e *Enhancer) EnhanceFiles(ctx context.Context, paths []string, out notestore.Dir, limit int) []FileResult {
	results := make([]FileResult, len(paths))
	claimed := make(map[string]string, len(paths))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		dest := out.Destination(path)
		if first, ok := claimed[dest]; ok {
			err := fmt.Errorf("%s: %w: %s", path, ErrDuplicateDest, first)
			e.log.Error("enhance skipped", "source", path, "dest", dest, "error", err)
			results[i] = FileResult{Source: path, Err: err}
			continue
		}
		claimed[dest] = path
		g.Go(func() error {
			dest, err := e.EnhanceFile(ctx, path, out)
			if err != nil {
				e.log.Error("enhance failed", "source", path, "error", err)
			}
			results[i] = FileResult{Source: path, Dest: dest, Err: err}
			return nil
		})
	}
	g.Wait()
	return results
}
