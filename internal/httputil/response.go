package httputil

import (
	"encoding/json"
	"maps"
	"net/http"
)

// RespondJSON marshals data before writing headers so an encoding failure
// still produces a clean 500.
func RespondJSON(w http.ResponseWriter, status int, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		RespondError(w, http.StatusInternalServerError, "failed to encode response")
		return
	}
	write(w, status, "application/json", payload)
}

// RespondNoContent writes a bare 204
func RespondNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// ProblemDetail is an RFC 7807 body. Extra members (material_id, resource_id, ...)
// are flattened next to the standard ones.
type ProblemDetail struct {
	Type   string
	Title  string
	Status int
	Detail string
	Extra  map[string]any
}

// MarshalJSON flattens Extra into the top-level object; standard members win on collision
func (p ProblemDetail) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, len(p.Extra)+4)
	maps.Copy(m, p.Extra)
	m["type"] = p.Type
	m["title"] = p.Title
	m["status"] = p.Status
	if p.Detail != "" {
		m["detail"] = p.Detail
	}
	return json.Marshal(m)
}

// RespondError writes an RFC 7807 problem response
func RespondError(w http.ResponseWriter, status int, detail string) {
	RespondErrorWithExtras(w, status, detail, nil)
}

// RespondErrorWithExtras writes an RFC 7807 problem response with extension members
func RespondErrorWithExtras(w http.ResponseWriter, status int, detail string, extras map[string]any) {
	payload, err := json.Marshal(ProblemDetail{
		Type:   problemType(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
		Extra:  extras,
	})
	if err != nil {
		write(w, http.StatusInternalServerError, "text/plain; charset=utf-8", []byte("internal server error"))
		return
	}
	write(w, status, "application/problem+json", payload)
}

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:        "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.2",
	http.StatusForbidden:           "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.4",
	http.StatusNotFound:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.5",
	http.StatusConflict:            "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.10",
	http.StatusUnprocessableEntity: "https://datatracker.ietf.org/doc/html/rfc9110#section-15.5.21",
	http.StatusInternalServerError: "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.1",
	http.StatusServiceUnavailable:  "https://datatracker.ietf.org/doc/html/rfc9110#section-15.6.4",
}

func problemType(status int) string {
	if t, ok := problemTypes[status]; ok {
		return t
	}
	return "about:blank"
}

func write(w http.ResponseWriter, status int, contentType string, payload []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
