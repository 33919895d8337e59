package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// FlexID is an opaque identifier that tolerates backends emitting ids as
// either JSON numbers or strings. It always normalizes to a string.
type FlexID string

// String implements fmt.Stringer.
func (f FlexID) String() string {
	return string(f)
}

// IsZero reports whether the id is empty.
func (f FlexID) IsZero() bool {
	return strings.TrimSpace(string(f)) == ""
}

// UnmarshalJSON accepts numbers, strings, and null.
func (f *FlexID) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*f = ""
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("flex id must be a string or number: %w", err)
	}
	*f = FlexID(n.String())
	return nil
}

// MarshalJSON always emits the string form.
func (f FlexID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}
