package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"hamanets/internal/core"
	"hamanets/internal/log"
)

const maxJSONBody = 1 << 20 // 1MB

type errorBody struct {
	Error string `json:"error"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// The status line is already out; an encode error only means the
	// client went away.
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRejected):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// writeError answers with the mapped status. Server errors are logged and
// their detail withheld.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= 500 {
		log.LogError(r.Context(), log.FromContext(r.Context()).WithComponent(log.ComponentHTTP), "Request failed", err, op, nil)
		writeJSON(w, status, errorBody{Error: "internal error"})
		return
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func writeNotFound(w http.ResponseWriter, entity, id string) {
	writeJSON(w, http.StatusNotFound, errorBody{Error: fmt.Sprintf("%s %q not found", entity, id)})
}

// decodeJSON reads a single JSON object into v, rejecting unknown fields
// and trailing data.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", core.ErrInvalidInput, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", core.ErrInvalidInput)
	}
	return nil
}

// queryInt parses an integer query parameter, falling back to def when
// absent.
func queryInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", core.ErrInvalidInput, key)
	}
	return n, nil
}

// sanitizeInput removes control characters except tab, newline and
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

// dayKey identifies the calendar day of the server clock. Views depending
// on "now" are cached per revision and day.
func (s *Server) dayKey() string {
	return s.now().Format("2006-01-02")
}
