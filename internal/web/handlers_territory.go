package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/estateadmin/internal/territory"
)

// Territorial lookups feed the cascading address selects. Lists are
// returned as-is from the register, ordered by name.

func (s *Server) handleVoivodeships(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Territory.Voivodeships(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCities(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Territory.Cities(r.Context(), chi.URLParam(r, "voivodeship"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// streetView adds the display name shown in address selects.
type streetView struct {
	territory.Street
	FullName string `json:"fullName"`
}

func (s *Server) handleStreets(w http.ResponseWriter, r *http.Request) {
	list, err := s.deps.Territory.Streets(r.Context(), chi.URLParam(r, "voivodeship"), chi.URLParam(r, "city"))
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	out := make([]streetView, len(list))
	for i, st := range list {
		out[i] = streetView{Street: st, FullName: st.FullName()}
	}
	writeJSON(w, http.StatusOK, out)
}
