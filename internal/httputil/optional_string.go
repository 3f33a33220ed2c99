package httputil

import (
	"bytes"
	"encoding/json"
	"strings"
)

// OptionalString is a PATCH field that distinguishes "absent" from "null".
// Present reports whether the key appeared in the body; Value is nil for JSON null.
type OptionalString struct {
	Present bool
	Value   *string
}

// UnmarshalJSON only runs when the key is present
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// Ref returns the value as a nullable reference: null, "" and blank all clear it
func (o OptionalString) Ref() *string {
	if o.Value == nil || strings.TrimSpace(*o.Value) == "" {
		return nil
	}
	v := strings.TrimSpace(*o.Value)
	return &v
}
