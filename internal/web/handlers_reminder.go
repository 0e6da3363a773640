package web

import (
	"bytes"
	"net/http"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/logging"
	"github.com/JonMunkholm/estateadmin/internal/views"
)

const reminderDismissPath = "/api/two-factor/reminder/dismiss"

type reminderStatus struct {
	Show bool   `json:"show"`
	HTML string `json:"html,omitempty"`
}

// handleReminderStatus tells the page whether to show the 2FA banner.
// HTMX requests get the banner fragment itself, or an empty body.
func (s *Server) handleReminderStatus(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	show := s.deps.Reminders.ShouldRemind(p)

	var banner bytes.Buffer
	if show {
		if err := views.TwoFactorBanner(s.cfg.Mail.TwoFactorSetupURL, reminderDismissPath).Render(r.Context(), &banner); err != nil {
			s.respondError(w, r, err, http.StatusInternalServerError)
			return
		}
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(banner.Bytes())
		return
	}
	writeJSON(w, http.StatusOK, reminderStatus{Show: show, HTML: banner.String()})
}

// handleReminderDismiss hides the banner for this session. It always
// succeeds.
func (s *Server) handleReminderDismiss(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	s.deps.Reminders.Dismiss(p)
	logging.WithFields(r.Context(), "user_id", p.UserID).Debug("two-factor reminder dismissed")

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleReminderEmail mails the reminder to the current user.
func (s *Server) handleReminderEmail(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	if p.TwoFactorEnabled {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sent": false})
		return
	}
	if err := s.deps.Mailer.Send(r.Context(), p); err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "sent": true})
}
