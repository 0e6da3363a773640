// Package reminder keeps the "enable two-factor authentication" nag for
// users who have not turned it on. Dismissal is advisory UI state scoped to
// one session; it does not enforce anything.
package reminder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"sync"
	"time"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/logging"
	"github.com/JonMunkholm/estateadmin/internal/mail"
	"github.com/JonMunkholm/estateadmin/internal/views"
)

// ErrNoEmail is returned when the principal has no address to mail.
var ErrNoEmail = errors.New("user has no email address")

type sessionKey struct {
	userID    string
	sessionID string
}

// Store remembers which sessions dismissed the reminder. Entries expire
// with the session.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	dismissed map[sessionKey]time.Time
}

// NewStore returns a store whose entries live for ttl, normally the
// session lifetime.
func NewStore(ttl time.Duration) *Store {
	return &Store{ttl: ttl, now: time.Now, dismissed: make(map[sessionKey]time.Time)}
}

func keyOf(p auth.Principal) sessionKey {
	return sessionKey{userID: p.UserID, sessionID: p.SessionID}
}

// Dismiss hides the reminder for the rest of p's session.
func (s *Store) Dismiss(p auth.Principal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed[keyOf(p)] = s.now().Add(s.ttl)
}

// IsDismissed reports whether p dismissed the reminder in this session.
func (s *Store) IsDismissed(p auth.Principal) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.dismissed[keyOf(p)]
	if !ok {
		return false
	}
	if !s.now().Before(exp) {
		delete(s.dismissed, keyOf(p))
		return false
	}
	return true
}

// ShouldRemind reports whether the banner should be shown to p.
func (s *Store) ShouldRemind(p auth.Principal) bool {
	return !p.TwoFactorEnabled && !s.IsDismissed(p)
}

// Prune drops expired entries and returns how many were removed.
func (s *Store) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	n := 0
	for k, exp := range s.dismissed {
		if !now.Before(exp) {
			delete(s.dismissed, k)
			n++
		}
	}
	return n
}

// StartPruning blocks, pruning every interval until ctx is done.
func (s *Store) StartPruning(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				logging.FromContext(ctx).Debug("reminder entries pruned", "count", n)
			}
		}
	}
}

// Mailer sends the reminder email.
type Mailer struct {
	sender   mail.Sender
	appName  string
	setupURL string
}

// NewMailer returns a mailer linking to setupURL.
func NewMailer(sender mail.Sender, appName, setupURL string) *Mailer {
	return &Mailer{sender: sender, appName: appName, setupURL: setupURL}
}

// Send mails the reminder to p.
func (m *Mailer) Send(ctx context.Context, p auth.Principal) error {
	if p.Email == "" {
		return ErrNoEmail
	}
	name := p.Name
	if name == "" {
		name = p.Email
	}

	var html bytes.Buffer
	if err := views.ReminderEmail(name, m.appName, m.setupURL).Render(ctx, &html); err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	msg := mail.Message{
		To:      []netmail.Address{{Name: p.Name, Address: p.Email}},
		Subject: "Włącz uwierzytelnianie dwuskładnikowe",
		Text: fmt.Sprintf("Dzień dobry %s,\n\nTwoje konto w serwisie %s nie jest jeszcze zabezpieczone "+
			"uwierzytelnianiem dwuskładnikowym.\nSkonfiguruj je tutaj: %s\n", name, m.appName, m.setupURL),
		HTML: html.String(),
	}
	if err := m.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("send reminder: %w", err)
	}

	logging.WithFields(ctx, "user_id", p.UserID).Info("two-factor reminder sent")
	return nil
}
