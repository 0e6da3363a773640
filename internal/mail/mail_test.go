package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	netmail "net/mail"
	"testing"

	"github.com/JonMunkholm/estateadmin/internal/config"
	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	from = netmail.Address{Name: "Administracja", Address: "no-reply@example.pl"}
	to   = netmail.Address{Name: "Anna Nowak", Address: "anna@example.pl"}
)

func TestConsoleSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSender(from, "Panel", &buf)

	err := s.Send(context.Background(), Message{To: []netmail.Address{to}, Subject: "Przypomnienie", Text: "Treść"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Subject: [Panel] Przypomnienie")
	assert.Contains(t, out, "anna@example.pl")
	assert.Contains(t, out, "Treść")
	assert.Len(t, s.Sent(), 1)
}

func TestSenders_RequireRecipients(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, NewConsoleSender(from, "Panel", &buf).Send(context.Background(), Message{}), ErrNoRecipients)
	assert.ErrorIs(t, NewSendgridSender("key", from, "Panel").Send(context.Background(), Message{}), ErrNoRecipients)
}

func TestSendgridSender(t *testing.T) {
	s := NewSendgridSender("SG.test", from, "Panel")

	var captured rest.Request
	s.api = func(req rest.Request) (*rest.Response, error) {
		captured = req
		return &rest.Response{StatusCode: 202}, nil
	}

	err := s.Send(context.Background(), Message{
		To: []netmail.Address{to}, Subject: "2FA", Text: "txt", HTML: "<p>html</p>",
	})
	require.NoError(t, err)

	assert.Equal(t, rest.Post, captured.Method)
	assert.Equal(t, "Bearer SG.test", captured.Headers["Authorization"])

	var body struct {
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Type string `json:"type"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(captured.Body, &body))
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "[Panel] 2FA", body.Personalizations[0].Subject)
	assert.Equal(t, "anna@example.pl", body.Personalizations[0].To[0].Email)
	assert.Len(t, body.Content, 2)
}

func TestSendgridSender_Errors(t *testing.T) {
	s := NewSendgridSender("SG.test", from, "Panel")
	msg := Message{To: []netmail.Address{to}, Subject: "x", Text: "y"}

	s.api = func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: 401, Body: "unauthorized"}, nil
	}
	assert.ErrorContains(t, s.Send(context.Background(), msg), "status 401")

	s.api = func(rest.Request) (*rest.Response, error) {
		return nil, errors.New("dial failed")
	}
	assert.ErrorContains(t, s.Send(context.Background(), msg), "dial failed")
}

func TestNewSender(t *testing.T) {
	var buf bytes.Buffer

	s, err := NewSender(config.MailConfig{Provider: "console"}, &buf)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleSender{}, s)

	s, err = NewSender(config.MailConfig{Provider: "SendGrid", SendgridAPIKey: "SG.x"}, &buf)
	require.NoError(t, err)
	assert.IsType(t, &SendgridSender{}, s)

	_, err = NewSender(config.MailConfig{Provider: "sendgrid"}, &buf)
	assert.Error(t, err)

	_, err = NewSender(config.MailConfig{Provider: "smtp"}, &buf)
	assert.ErrorContains(t, err, "unknown mail provider")
}
