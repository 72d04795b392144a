package server

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/matzehuels/axnarrate/pkg/errors"
	"github.com/matzehuels/axnarrate/pkg/session"
)

// Response headers describing a rendered artifact.
const (
	headerTreeHash = "X-Tree-Hash"
	headerCache    = "X-Cache"
	headerErrors   = "X-Error-Fragments"
	headerSession  = "X-Session-ID"
)

// problem is an RFC 7807 problem details body.
type problem struct {
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
	Code   string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	writeProblem(w, problem{Title: http.StatusText(status), Status: status, Detail: detail})
}

// respondErr maps err to a status and writes it as a problem. Internal
// errors are not echoed to the client.
func respondErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	p := problem{Title: http.StatusText(status), Status: status, Code: string(apperrors.GetCode(err))}
	if status < http.StatusInternalServerError || status == http.StatusServiceUnavailable {
		p.Detail = apperrors.UserMessage(err)
	}
	writeProblem(w, p)
}

func writeProblem(w http.ResponseWriter, p problem) {
	payload, _ := json.Marshal(p)
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	_, _ = w.Write(payload)
}

// statusFor maps an error to an HTTP status code.
func statusFor(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	}

	switch apperrors.GetCode(err) {
	case apperrors.ErrCodeInvalidInput, apperrors.ErrCodeInvalidTree, apperrors.ErrCodeInvalidFormat,
		apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeInvalidSession:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound, apperrors.ErrCodeFileNotFound, apperrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeNetwork, apperrors.ErrCodeTimeout:
		return http.StatusServiceUnavailable
	case apperrors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
