package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client gets the mapped user message as
// JSON, or as an HTML alert fragment when the request came from HTMX.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/estateadmin/internal/auth"
	"github.com/JonMunkholm/estateadmin/internal/core"
	"github.com/JonMunkholm/estateadmin/internal/logging"
	"github.com/JonMunkholm/estateadmin/internal/reminder"
	"github.com/JonMunkholm/estateadmin/internal/territory"
	"github.com/JonMunkholm/estateadmin/internal/views"
)

var (
	errNoFile      = errors.New("no file provided")
	errInvalidForm = errors.New("invalid upload form")
	errInvalidBody = errors.New("invalid request body")
	errRateLimited = errors.New("rate limit exceeded")
	errBadMapping  = errors.New("invalid column mapping")
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Message string   `json:"message"`
	Action  string   `json:"action,omitempty"`
	Code    string   `json:"code"`
	Fields  []string `json:"fields,omitempty"`
}

// Messages for errors owned by the web layer and its collaborators. Every
// other error goes through core.MapError.
var webMessages = []struct {
	target error
	msg    core.UserMessage
}{
	{errInvalidForm, core.UserMessage{Message: "The upload form is invalid", Action: "Attach the file as multipart field \"file\"", Code: "REQ001"}},
	{errInvalidBody, core.UserMessage{Message: "The request body is invalid", Action: "Send a JSON object", Code: "REQ002"}},
	{errBadMapping, core.UserMessage{Message: "The column mapping is invalid", Action: "Send the mapping as a JSON object of header to field", Code: "REQ003"}},
	{auth.ErrUnauthenticated, core.UserMessage{Message: "You are not logged in", Action: "Log in and try again", Code: "AUTH001"}},
	{auth.ErrForbidden, core.UserMessage{Message: "You are not allowed to do this", Action: "Ask an administrator for access", Code: "AUTH002"}},
	{reminder.ErrNoEmail, core.UserMessage{Message: "Your account has no email address", Action: "Add an email address to your profile", Code: "AUTH004"}},
	{territory.ErrInvalidCode, core.UserMessage{Message: "Invalid territorial code", Action: "Choose the region and city from the list", Code: "TER001"}},
}

func userMessage(err error) core.UserMessage {
	for _, m := range webMessages {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}
	return core.MapError(err)
}

// statusFor picks the HTTP status of an error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownEntity), errors.Is(err, core.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrDuplicateFile), errors.Is(err, core.ErrAlreadyRolledBack):
		return http.StatusConflict
	case errors.Is(err, core.ErrMissingRequiredColumn), errors.Is(err, core.ErrEncoding),
		errors.Is(err, core.ErrEmptyFile), errors.Is(err, core.ErrAmbiguousDelimiter),
		errors.Is(err, core.ErrUnknownOverrideField), errors.Is(err, reminder.ErrNoEmail):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrUnknownProfile), errors.Is(err, core.ErrInvalidProfile),
		errors.Is(err, core.ErrUnsupportedFormat), errors.Is(err, territory.ErrInvalidCode),
		errors.Is(err, errNoFile), errors.Is(err, errInvalidForm),
		errors.Is(err, errInvalidBody), errors.Is(err, errBadMapping):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, core.ErrTooManyImports):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user message with statusCode.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	msg := userMessage(err)

	log := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", msg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		log.Error("request error", args...)
	} else {
		log.Warn("request error", args...)
	}

	if statusCode == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "10")
	}

	switch {
	case isHTMX(r):
		renderErrorPartial(w, r, msg, statusCode)
	case wantsJSON(r):
		resp := errorResponse(msg)
		var missing *core.MissingColumnsError
		if errors.As(err, &missing) {
			resp.Fields = missing.Fields
		}
		writeJSON(w, statusCode, resp)
	default:
		http.Error(w, msg.String(), statusCode)
	}
}

func errorResponse(msg core.UserMessage) ErrorResponse {
	return ErrorResponse{Error: msg.Message, Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// respondErrorJSON writes msg without logging, for middleware rejections.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse(msg))
}

func renderErrorPartial(w http.ResponseWriter, r *http.Request, msg core.UserMessage, statusCode int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	if err := views.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render error alert", "error", err)
	}
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// wantsJSON reports whether the client expects JSON. API routes always do.
func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json") ||
		strings.Contains(r.Header.Get("Content-Type"), "application/json") ||
		strings.HasPrefix(r.URL.Path, "/api/")
}
