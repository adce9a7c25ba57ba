package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/notegest/internal/enhance"
)

// JobStatus represents the state of an enhancement job.
type JobStatus string

const (
	StatusQueued     JobStatus = "queued"
	StatusChecking   JobStatus = "checking"
	StatusGenerating JobStatus = "generating"
	StatusMerging    JobStatus = "merging"
	StatusCompleted  JobStatus = "completed"
	StatusFailed     JobStatus = "failed"
)

// Done reports whether the job will not change any more.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks the enhancement of one uploaded note.
type Job struct {
	mu sync.Mutex

	ID      string `json:"job_id"`
	BatchID string `json:"batch_id,omitempty"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	input     string
	result    enhance.Result
	err       error
	errorKind enhance.ErrorKind
}

// NewJob creates a queued job for a note.
func NewJob(batchID, filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:          uuid.NewString(),
		BatchID:     batchID,
		Status:      StatusQueued,
		Phase:       "queued",
		Filename:    filename,
		ContentHash: ContentHashHex(data),
		CreatedAt:   now,
		UpdatedAt:   now,
		input:       string(data),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Fail marks the job failed during phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusFailed
	j.Phase = phase
	j.err = err
	j.errorKind = enhance.Classify(err)
	j.UpdatedAt = time.Now()
}

// Complete stores the enhanced note.
func (j *Job) Complete(res enhance.Result) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = StatusCompleted
	j.Phase = "done"
	j.result = res
	j.UpdatedAt = time.Now()
}

// Input returns the uploaded note text.
func (j *Job) Input() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.input
}

// Result returns the enhancement outcome and the failure, if any.
func (j *Job) Result() (enhance.Result, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.err
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID            string            `json:"job_id"`
	BatchID       string            `json:"batch_id,omitempty"`
	Status        JobStatus         `json:"status"`
	Phase         string            `json:"phase"`
	Filename      string            `json:"filename"`
	ContentHash   string            `json:"content_hash"`
	ReplyKind     string            `json:"reply_kind,omitempty"`
	Tags          []string          `json:"tags"`
	TagsRewritten bool              `json:"tags_rewritten"`
	Error         string            `json:"error,omitempty"`
	ErrorKind     enhance.ErrorKind `json:"error_kind,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	snap := JobSnapshot{
		ID:          j.ID,
		BatchID:     j.BatchID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Tags:        []string{},
		ErrorKind:   j.errorKind,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
	if j.Status == StatusCompleted {
		snap.ReplyKind = j.result.Reply.Kind.String()
		snap.TagsRewritten = j.result.TagsRewritten
		if j.result.Reply.Tags != nil {
			snap.Tags = append(snap.Tags, j.result.Reply.Tags...)
		}
	}
	if j.err != nil {
		snap.Error = j.err.Error()
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
