package web

import (
	"net/http"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/dashboard"
)

// handleHealth reports liveness and import slot usage.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"imports": s.deps.Imports.LimiterStatus(),
	})
}

// handleDashboard sends the user to the landing page of their role.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	var p *auth.Principal
	if principal, ok := auth.FromContext(r.Context()); ok {
		p = &principal
	}
	target := dashboard.Route(p)

	if isHTMX(r) {
		w.Header().Set("HX-Redirect", target)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
