package pipeline

import (
	"context"
	"log/slog"

	"github.com/dgallion1/notegest/internal/enhance"
)

// Stages is the enhancement pipeline split at the model call, so a job can
// report which phase it is in.
type Stages interface {
	Check(text string) (string, error)
	Generate(ctx context.Context, introduction string) (string, error)
	Apply(text, raw string) (enhance.Result, error)
}

// Worker processes a single note job.
type Worker struct {
	stages Stages
	log    *slog.Logger
}

func NewWorker(stages Stages, log *slog.Logger) *Worker {
	return &Worker{stages: stages, log: log}
}

// Process runs the full enhancement pipeline for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	text := job.Input()

	// Phase 1: make sure the note can take the reply before paying for it.
	job.SetStatus(StatusChecking, "checking")
	intro, err := w.stages.Check(text)
	if err != nil {
		log.Error("structure check failed", "error", err)
		job.Fail("checking", err)
		return
	}

	// Phase 2: model call
	job.SetStatus(StatusGenerating, "generating")
	raw, err := w.stages.Generate(ctx, intro)
	if err != nil {
		log.Error("generation failed", "error", err)
		job.Fail("generating", err)
		return
	}
	log.Info("reply received", "bytes", len(raw))

	// Phase 3: decode, merge, tags
	job.SetStatus(StatusMerging, "merging")
	res, err := w.stages.Apply(text, raw)
	if err != nil {
		log.Error("merge failed", "error", err)
		job.Fail("merging", err)
		return
	}
	res.Introduction = intro

	job.Complete(res)
	log.Info("job complete", "reply_kind", res.Reply.Kind.String(), "tags_rewritten", res.TagsRewritten)
}
