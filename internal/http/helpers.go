package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"econguide/internal/content"
	"econguide/internal/core"
)

var (
	errTemplatesNotLoaded = errors.New("templates not loaded")
	errMalformedBody      = errors.New("malformed request body")
)

// Error codes outside the core set.
const (
	codeNotFound = "not_found"
	codeInternal = "internal"
)

// errorCode maps an error to its HTTP status and stable API code. Every
// handler goes through it.
func errorCode(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrDivisionByZero),
		errors.Is(err, core.ErrUndefinedPower),
		errors.Is(err, core.ErrInvalidOperator),
		errors.Is(err, core.ErrInvalidOperand):
		return http.StatusUnprocessableEntity, core.ErrorCode(err)
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, core.CodeInvalidInput
	case errors.Is(err, content.ErrTopicNotFound):
		return http.StatusNotFound, codeNotFound
	default:
		return http.StatusInternalServerError, codeInternal
	}
}

// userMessage is the text shown next to a failed calculation.
func userMessage(err error) string {
	switch {
	case errors.Is(err, core.ErrDivisionByZero):
		return "Error: Division by zero!"
	case errors.Is(err, core.ErrUndefinedPower):
		return "Error: the power has no real result."
	case errors.Is(err, core.ErrInvalidOperator):
		return "Error: unknown operator."
	case errors.Is(err, core.ErrInvalidOperand):
		return "Error: please enter valid numbers."
	case errors.Is(err, errMalformedBody):
		return "Error: malformed request."
	case errors.Is(err, content.ErrTopicNotFound):
		return "Topic not found."
	default:
		return "Something went wrong."
	}
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		// Only non-finite floats get here.
		status = http.StatusInternalServerError
		body, _ = json.Marshal(apiError{Error: codeInternal, Message: "result cannot be encoded"})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Error: code, Message: message})
}

// writeAPIError writes err as {"error": code, "message": ...}.
func writeAPIError(w http.ResponseWriter, err error) {
	status, code := errorCode(err)
	writeJSONError(w, status, code, userMessage(err))
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// sanitizeInput removes control characters other than tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
