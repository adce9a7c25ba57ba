// Package enhance runs the note enhancement pipeline: extract the
// introduction, ask the model for sections 2 and 3, merge them back and
// rewrite the tags field.
package enhance

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/reply"
	"github.com/dgallion1/notegest/internal/section"
	"github.com/dgallion1/notegest/internal/tags"
)

// Completer is the model call boundary.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message) (string, error)
}

// Options selects the deployment configuration of the pipeline.
type Options struct {
	// RewriteTags enables the tags step for replies that carry tags.
	RewriteTags bool
}

// Enhancer holds no per-note state and is safe for concurrent use.
type Enhancer struct {
	llm     Completer
	decoder *reply.Decoder
	opts    Options
	log     *slog.Logger
}

func New(c Completer, d *reply.Decoder, opts Options, log *slog.Logger) *Enhancer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Enhancer{llm: c, decoder: d, opts: opts, log: log}
}

// Result is the outcome of one enhancement.
type Result struct {
	Text          string
	Introduction  string
	Reply         reply.Reply
	TagsRewritten bool
}

func (e *Enhancer) tagsEnabled() bool {
	return e.opts.RewriteTags && e.decoder.Format() == reply.FormatJSON
}

// Check verifies that text has everything the pipeline will touch and
// returns the introduction. It runs before any model call.
func (e *Enhancer) Check(text string) (string, error) {
	intro, err := section.Introduction(text)
	if err != nil {
		return "", err
	}
	if _, _, err := section.Bounds(text); err != nil {
		return "", err
	}
	if e.tagsEnabled() {
		if _, err := tags.FindField(text); err != nil {
			return "", err
		}
	}
	return intro, nil
}

// Generate asks the model for the replacement sections.
func (e *Enhancer) Generate(ctx context.Context, introduction string) (string, error) {
	return e.llm.Complete(ctx, llm.BuildMessages(introduction, e.decoder.Format()))
}

// Apply decodes raw and splices it into text.
func (e *Enhancer) Apply(text, raw string) (Result, error) {
	rep, err := e.decoder.Decode(raw)
	if err != nil {
		return Result{}, err
	}
	merged, err := section.Merge(text, rep.Replacement)
	if err != nil {
		return Result{}, err
	}

	res := Result{Text: merged, Reply: rep}
	if rep.HasTags() && e.opts.RewriteTags {
		merged, err = tags.Rewrite(merged, rep.Tags)
		if err != nil {
			return Result{}, err
		}
		res.Text = merged
		res.TagsRewritten = true
	}
	return res, nil
}

// Enhance runs the whole pipeline on one note.
func (e *Enhancer) Enhance(ctx context.Context, text string) (Result, error) {
	intro, err := e.Check(text)
	if err != nil {
		return Result{}, err
	}
	raw, err := e.Generate(ctx, intro)
	if err != nil {
		return Result{}, fmt.Errorf("generate sections: %w", err)
	}
	res, err := e.Apply(text, raw)
	if err != nil {
		return Result{}, err
	}
	res.Introduction = intro
	e.log.Debug("note enhanced", "kind", res.Reply.Kind.String(), "tags", len(res.Reply.Tags), "bytes", len(res.Text))
	return res, nil
}
