package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/estateadmin/internal/logging"
)

// handleTemplate serves the import template of an entity as an attachment.
// ?format=xlsx selects the spreadsheet; the default is CSV.
func (s *Server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")

	body, name, contentType, err := s.deps.Imports.Template(entity, r.URL.Query().Get("format"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(body); err != nil {
		logging.FromContext(r.Context()).Warn("template write failed", "entity", entity, "error", err)
	}
}
