package api

import (
	"net/http"

	"github.com/dgallion1/notegest/internal/parser"
)

// handleOutline reports the heading tree of a note and whether it can be
// enhanced, without calling the model.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	outline, err := parser.ParseOutline(data, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, http.StatusOK, outline)
}
