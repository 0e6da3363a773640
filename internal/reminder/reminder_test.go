package reminder

import (
	"bytes"
	"context"
	netmail "net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/mail"
)

func TestStore(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := NewStore(time.Hour)
	s.now = func() time.Time { return now }

	anna := auth.Principal{UserID: "1", SessionID: "s1"}
	annaOtherSession := auth.Principal{UserID: "1", SessionID: "s2"}
	secured := auth.Principal{UserID: "2", SessionID: "s3", TwoFactorEnabled: true}

	assert.True(t, s.ShouldRemind(anna))
	assert.False(t, s.ShouldRemind(secured))

	s.Dismiss(anna)
	s.Dismiss(anna)
	assert.False(t, s.ShouldRemind(anna))
	assert.True(t, s.ShouldRemind(annaOtherSession), "dismissal is per session")

	now = now.Add(time.Hour)
	assert.True(t, s.ShouldRemind(anna), "dismissal expires with the session")
}

func TestStore_Prune(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	s := NewStore(time.Minute)
	s.now = func() time.Time { return now }

	s.Dismiss(auth.Principal{UserID: "1", SessionID: "a"})
	s.Dismiss(auth.Principal{UserID: "2", SessionID: "b"})
	assert.Equal(t, 0, s.Prune())

	now = now.Add(2 * time.Minute)
	s.Dismiss(auth.Principal{UserID: "3", SessionID: "c"})
	assert.Equal(t, 2, s.Prune())
	assert.True(t, s.IsDismissed(auth.Principal{UserID: "3", SessionID: "c"}))
}

func TestMailer_Send(t *testing.T) {
	var out bytes.Buffer
	sender := mail.NewConsoleSender(mailFrom, "Panel", &out)
	m := NewMailer(sender, "Panel", "https://example.pl/2fa")

	err := m.Send(context.Background(), auth.Principal{UserID: "1", Email: "anna@example.pl", Name: "Anna"})
	require.NoError(t, err)

	sent := sender.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "anna@example.pl", sent[0].To[0].Address)
	assert.Contains(t, sent[0].Text, "https://example.pl/2fa")
	assert.Contains(t, sent[0].HTML, "Dzień dobry Anna")
}

func TestMailer_NoEmail(t *testing.T) {
	var out bytes.Buffer
	m := NewMailer(mail.NewConsoleSender(mailFrom, "Panel", &out), "Panel", "x")
	assert.ErrorIs(t, m.Send(context.Background(), auth.Principal{UserID: "1"}), ErrNoEmail)
}

var mailFrom = netmail.Address{Name: "Administracja", Address: "no-reply@example.pl"}
