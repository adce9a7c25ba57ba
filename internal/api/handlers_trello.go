package api

import (
	"io"
	"net/http"

	"github.com/dgallion1/notegest/internal/trello"
)

// handleConvertTrello turns the comments of a board export in the request
// body into notes.
func (s *Server) handleConvertTrello(w http.ResponseWriter, r *http.Request) {
	if s.converter == nil {
		jsonError(w, "trello conversion unavailable", http.StatusServiceUnavailable)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, "export exceeds max size", http.StatusRequestEntityTooLarge)
		return
	}

	notes, err := s.converter.Convert(data)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Count int           `json:"count"`
		Notes []trello.Note `json:"notes"`
	}{len(notes), notes})
}
