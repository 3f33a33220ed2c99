package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; article bodies are the largest payloads
const maxBodyBytes = 10 << 20

// ParseJSON decodes JSON from the request body into dest, rejecting unknown fields
func ParseJSON(w http.ResponseWriter, r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	return nil
}

// PathUUID reads a path parameter and checks that it is a UUID.
// The canonical lowercase form is returned.
func PathUUID(r *http.Request, name string) (string, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return "", fmt.Errorf("%s is required", name)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%s must be a UUID", name)
	}
	return id.String(), nil
}

// QueryInt reads an integer query parameter, returning def when absent
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}

// QueryString returns a pointer to a query parameter, or nil when absent or empty
func QueryString(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}
