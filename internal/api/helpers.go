package api

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/notegest/internal/enhance"
)

// Form overhead allowed on top of the upload limit.
const formSlack = 1 << 20

// Bytes of a single-file form kept in memory; larger parts spill to disk.
var uploadMemory int64 = 32 << 20

var noteExtensions = map[string]bool{".md": true, ".markdown": true, ".txt": true}

func isNoteFile(name string) bool {
	return noteExtensions[strings.ToLower(filepath.Ext(name))]
}

// readUpload reads the multipart file field of a single-file request. It
// writes the error response itself and returns ok=false on failure, after
// removing any spilled form files. On success the caller owns cleanup.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) (filename string, data []byte, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formSlack)

	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer func() {
		if !ok {
			r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(field)
	if err != nil {
		jsonError(w, field+" is required: "+err.Error(), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !isNoteFile(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", nil, false
	}

	data, err = s.readLimited(file)
	if err != nil {
		jsonError(w, err.Error(), http.StatusRequestEntityTooLarge)
		return "", nil, false
	}
	return filename, data, true
}

func (s *Server) readLimited(f multipart.File) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, fmt.Errorf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes)
	}
	return data, nil
}

// statusFor maps a pipeline error kind to an HTTP status.
func statusFor(kind enhance.ErrorKind) int {
	switch kind {
	case enhance.KindStructure:
		return http.StatusUnprocessableEntity
	case enhance.KindSchema, enhance.KindTransport:
		return http.StatusBadGateway
	case enhance.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// pipelineError writes err with its kind so clients can tell a bad note
// from a bad model reply.
func pipelineError(w http.ResponseWriter, err error) {
	kind := enhance.Classify(err)
	writeJSON(w, statusFor(kind), map[string]string{
		"error": err.Error(),
		"kind":  string(kind),
	})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
