package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dgallion1/notegest/internal/pipeline"
)

type enhanceResponse struct {
	Filename      string   `json:"filename"`
	ReplyKind     string   `json:"reply_kind"`
	Tags          []string `json:"tags"`
	TagsRewritten bool     `json:"tags_rewritten"`
	Content       string   `json:"content"`
}

// handleEnhance enhances one uploaded note and returns it in the response.
// With ?format=markdown the note itself is the body.
func (s *Server) handleEnhance(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	select {
	case s.inline <- struct{}{}:
		defer func() { <-s.inline }()
	case <-r.Context().Done():
		jsonError(w, "request cancelled", http.StatusServiceUnavailable)
		return
	}

	res, err := s.enhancer.Enhance(r.Context(), string(data))
	if err != nil {
		s.log.Error("enhance failed", "filename", filename, "error", err)
		pipelineError(w, err)
		return
	}

	if r.URL.Query().Get("format") == "markdown" {
		writeNote(w, filename, res.Text)
		return
	}
	tags := res.Reply.Tags
	if tags == nil {
		tags = []string{}
	}
	writeJSON(w, http.StatusOK, enhanceResponse{
		Filename:      filename,
		ReplyKind:     res.Reply.Kind.String(),
		Tags:          tags,
		TagsRewritten: res.TagsRewritten,
		Content:       res.Text,
	})
}

func (s *Server) handleBatchEnhance(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*formSlack)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}

	batchID := uuid.NewString()
	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !isNoteFile(filename) {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "unsupported file type",
			})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    "failed to open file",
			})
			continue
		}
		data, err := s.readLimited(f)
		f.Close()
		if err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(batchID, filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"job_id":   job.ID,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": fmt.Sprintf("/api/jobs/%s/status", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"batch_id": batchID, "jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

// handleJobResult returns the enhanced note of a completed job.
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	switch snap.Status {
	case pipeline.StatusCompleted:
		res, _ := job.Result()
		writeNote(w, snap.Filename, res.Text)
	case pipeline.StatusFailed:
		writeJSON(w, statusFor(snap.ErrorKind), map[string]string{
			"error": snap.Error,
			"kind":  string(snap.ErrorKind),
			"phase": snap.Phase,
		})
	default:
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":  "job not finished",
			"status": snap.Status,
		})
	}
}

func writeNote(w http.ResponseWriter, filename, text string) {
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write([]byte(text))
}
