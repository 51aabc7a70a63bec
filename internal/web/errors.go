package web

// errors.go turns handler errors into responses. The technical error is
// logged with the request id; the client gets the coded message from
// core.MapError, as JSON for /api/ routes and as an HTML page otherwise.

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/instrumentdiff/internal/core"
	"github.com/JonMunkholm/instrumentdiff/internal/logging"
	"github.com/JonMunkholm/instrumentdiff/internal/web/templates"
)

// errInvalidParameter marks a missing or malformed query parameter.
var errInvalidParameter = errors.New("invalid parameter")

func invalidParameter(name, reason string) error {
	return fmt.Errorf("%w %q: %s", errInvalidParameter, name, reason)
}

// ErrorResponse represents the JSON structure for API error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for err.
func statusFor(err error) int {
	switch {
	case core.IsLookupError(err):
		return http.StatusNotFound
	case errors.Is(err, errInvalidParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	log := logging.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request error", "path", r.URL.Path, "status", status, "error", err, "code", userMsg.Code)
	} else {
		log.Info("request rejected", "path", r.URL.Path, "status", status, "error", err, "code", userMsg.Code)
	}

	if wantsJSON(r) {
		respondErrorJSON(w, userMsg, err, status)
		return
	}
	respondErrorHTML(w, r, userMsg, status)
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, msg core.UserMessage, err error, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:   detail(err, status),
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// detail exposes the error text for client errors only.
func detail(err error, status int) string {
	if status < http.StatusInternalServerError {
		return err.Error()
	}
	return http.StatusText(status)
}

// respondErrorHTML renders the error page.
func respondErrorHTML(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorPage(msg).Render(r.Context(), w)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.HasPrefix(r.URL.Path, "/api/")
}
