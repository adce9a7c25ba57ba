package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dgallion1/notegest/internal/enhance"
	"github.com/dgallion1/notegest/internal/llm"
	"github.com/dgallion1/notegest/internal/reply"
)

const note = `---
tags: ["old"]
---
## SECTION 1: INTRODUCTION/OVERVIEW
Go is a compiled language.

## SECTION 2: KEY CONCEPTS/DEFINITIONS
*   **Concept 1:** ...

## SECTION 3: EVIDENCE/SUPPORTING DETAILS
*   Detail 1: ...
`

const structuredReply = `{"tags":["Go","go","rust"],"section2":"## SECTION 2: KEY CONCEPTS/DEFINITIONS\n* typed","section3":"## SECTION 3: EVIDENCE/SUPPORTING DETAILS\n* fast"}`

type fakeModel struct {
	reply string
	err   error
	calls atomic.Int32
}

func (f *fakeModel) Complete(context.Context, []llm.Message) (string, error) {
	f.calls.Add(1)
	return f.reply, f.err
}

func testStages(t *testing.T, m *fakeModel) Stages {
	t.Helper()
	d, err := reply.NewDecoder(reply.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	return enhance.New(m, d, enhance.Options{RewriteTags: true}, nil)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestWorker_Completes(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	w := NewWorker(testStages(t, m), discardLogger())
	job := NewJob("", "go.md", []byte(note))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", snap.Status, snap.Error)
	}
	res, _ := job.Result()
	if !strings.Contains(res.Text, `tags: ["Go","rust"]`) {
		t.Errorf("expected rewritten tags, got:\n%s", res.Text)
	}
	if !strings.Contains(res.Text, "* typed") || res.Introduction != "Go is a compiled language." {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestWorker_StructureFailureSkipsModel(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	w := NewWorker(testStages(t, m), discardLogger())
	job := NewJob("", "bad.md", []byte("no headings here"))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || snap.Phase != "checking" || snap.ErrorKind != enhance.KindStructure {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if m.calls.Load() != 0 {
		t.Errorf("expected no model call, got %d", m.calls.Load())
	}
}

func TestWorker_SchemaFailure(t *testing.T) {
	m := &fakeModel{reply: "[1,2]"}
	w := NewWorker(testStages(t, m), discardLogger())
	job := NewJob("", "go.md", []byte(note))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Phase != "merging" || snap.ErrorKind != enhance.KindSchema {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestWorker_TransportFailure(t *testing.T) {
	m := &fakeModel{err: &llm.TransportError{StatusCode: 503, Body: "loading"}}
	w := NewWorker(testStages(t, m), discardLogger())
	job := NewJob("", "go.md", []byte(note))

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Phase != "generating" || snap.ErrorKind != enhance.KindTransport {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func waitDone(t *testing.T, job *Job) JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := job.Snapshot(); snap.Status.Done() {
			return snap
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job %s did not finish", job.ID)
	return JobSnapshot{}
}

func TestOrchestrator_RunsJobsIndependently(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	o := NewOrchestrator(Config{WorkerCount: 2, MaxQueueSize: 10, JobTTL: time.Hour}, testStages(t, m), discardLogger())
	o.Start(context.Background())
	defer o.Stop()

	good := NewJob("b", "good.md", []byte(note))
	bad := NewJob("b", "bad.md", []byte("nothing"))
	for _, j := range []*Job{good, bad} {
		if err := o.Submit(j); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	if snap := waitDone(t, good); snap.Status != StatusCompleted {
		t.Errorf("expected good job to complete, got %+v", snap)
	}
	if snap := waitDone(t, bad); snap.Status != StatusFailed {
		t.Errorf("expected bad job to fail, got %+v", snap)
	}
	if o.GetJob(good.ID) != good || o.JobCount() != 2 {
		t.Error("expected jobs to be tracked")
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	// Not started, so nothing drains the queue.
	o := NewOrchestrator(Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, testStages(t, m), discardLogger())

	if err := o.Submit(NewJob("", "a.md", []byte(note))); err != nil {
		t.Fatalf("first Submit: %v", err)
	}
	second := NewJob("", "b.md", []byte(note))
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if snap := second.Snapshot(); snap.Status != StatusFailed || snap.Phase != "queue_full" {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if o.QueueDepth() != 1 {
		t.Errorf("expected queue depth 1, got %d", o.QueueDepth())
	}
}

func TestOrchestrator_SubmitAfterStop(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	o := NewOrchestrator(Config{WorkerCount: 1, MaxQueueSize: 1, JobTTL: time.Hour}, testStages(t, m), discardLogger())
	o.Start(context.Background())
	o.Stop()
	o.Stop()

	job := NewJob("", "late.md", []byte(note))
	if err := o.Submit(job); !errors.Is(err, ErrStopped) {
		t.Fatalf("expected ErrStopped, got %v", err)
	}
	if snap := job.Snapshot(); snap.Status != StatusFailed {
		t.Errorf("expected failed job, got %q", snap.Status)
	}
}

func TestOrchestrator_StopFailsQueuedJobs(t *testing.T) {
	m := &fakeModel{reply: structuredReply}
	// Not started, so the jobs stay queued until Stop.
	o := NewOrchestrator(Config{WorkerCount: 1, MaxQueueSize: 2, JobTTL: time.Hour}, testStages(t, m), discardLogger())

	jobs := []*Job{NewJob("", "a.md", []byte(note)), NewJob("", "b.md", []byte(note))}
	for _, j := range jobs {
		if err := o.Submit(j); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	o.Stop()

	for _, j := range jobs {
		snap := j.Snapshot()
		if snap.Status != StatusFailed || snap.Phase != "queued" {
			t.Errorf("expected queued job failed on stop, got %+v", snap)
		}
		if !strings.Contains(snap.Error, ErrStopped.Error()) {
			t.Errorf("expected stop error, got %q", snap.Error)
		}
	}
	if o.QueueDepth() != 0 {
		t.Errorf("expected drained queue, got depth %d", o.QueueDepth())
	}
	if m.calls.Load() != 0 {
		t.Errorf("expected no model calls, got %d", m.calls.Load())
	}
}
