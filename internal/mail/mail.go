// Package mail sends transactional email through SendGrid, or to the log
// in development.
package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	netmail "net/mail"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/estateadmin/internal/config"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrNoRecipients is returned for a message without any To address.
var ErrNoRecipients = errors.New("message has no recipients")

// Message is one email.
type Message struct {
	To      []netmail.Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ConsoleSender writes messages to w instead of delivering them and keeps
// a copy of each.
type ConsoleSender struct {
	from       netmail.Address
	subjPrefix string
	w          io.Writer

	mu   sync.Mutex
	sent []Message
}

// NewConsoleSender returns a sender printing to w.
func NewConsoleSender(from netmail.Address, appName string, w io.Writer) *ConsoleSender {
	return &ConsoleSender{from: from, subjPrefix: "[" + appName + "] ", w: w}
}

func (s *ConsoleSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from.String())
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&b, "Subject: %s\r\n", s.subjPrefix+msg.Subject)
	fmt.Fprintf(&b, "To: %s\r\n\r\n", joinAddresses(msg.To))
	b.WriteString(msg.Text)
	b.WriteString("\r\n")

	if _, err := io.WriteString(s.w, b.String()); err != nil {
		return fmt.Errorf("write message: %w", err)
	}

	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

// Sent returns the messages sent so far.
func (s *ConsoleSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.sent))
	copy(out, s.sent)
	return out
}

const (
	sendgridHost     = "https://api.sendgrid.com"
	sendgridEndpoint = "/v3/mail/send"
)

// SendgridSender delivers through the SendGrid v3 API.
type SendgridSender struct {
	key        string
	from       *sgmail.Email
	subjPrefix string
	api        func(rest.Request) (*rest.Response, error)
}

// NewSendgridSender returns a sender using the API key.
func NewSendgridSender(key string, from netmail.Address, appName string) *SendgridSender {
	return &SendgridSender{
		key:        key,
		from:       sgmail.NewEmail(from.Name, from.Address),
		subjPrefix: "[" + appName + "] ",
		api:        sendgrid.API,
	}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}

	req := sendgrid.GetRequest(s.key, sendgridEndpoint, sendgridHost)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(s.prepare(msg))

	res, err := s.api(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid rejected message: status %d: %s", res.StatusCode, res.Body)
	}
	slog.Debug("email sent", "subject", msg.Subject, "recipients", len(msg.To), "status", res.StatusCode)
	return nil
}

func (s *SendgridSender) prepare(msg Message) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = s.subjPrefix + msg.Subject
	for _, to := range msg.To {
		p.AddTos(sgmail.NewEmail(to.Name, to.Address))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(s.from)
	m.AddPersonalizations(p)
	m.AddContent(sgmail.NewContent("text/plain", msg.Text))
	if msg.HTML != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTML))
	}
	return m
}

func joinAddresses(addrs []netmail.Address) string {
	parts := make([]string, len(addrs))
	for i, a := range addrs {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg config.MailConfig, w io.Writer) (Sender, error) {
	from := netmail.Address{Name: cfg.FromName, Address: cfg.FromAddress}
	switch strings.ToLower(cfg.Provider) {
	case "", "console":
		return NewConsoleSender(from, cfg.AppName, w), nil
	case "sendgrid":
		if cfg.SendgridAPIKey == "" {
			return nil, errors.New("mail provider sendgrid requires SENDGRID_API_KEY")
		}
		return NewSendgridSender(cfg.SendgridAPIKey, from, cfg.AppName), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}
