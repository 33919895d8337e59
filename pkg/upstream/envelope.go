package upstream

import (
	"encoding/json"
	"fmt"
	"strings"
)

// List payloads arrive in several envelope shapes depending on the backend
// revision: a bare array, or an object keyed by a resource name, "data", or
// "items". Shape probing happens here, once, so callers always see a typed
// slice.
func decodeList[T any](raw json.RawMessage, resourceKeys ...string) ([]T, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decoding list: %w", err)
		}
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decoding list envelope: %w", err)
	}

	keys := append(resourceKeys, "data", "items")
	for _, key := range keys {
		inner, ok := envelope[key]
		if !ok {
			continue
		}
		var items []T
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("decoding %q list: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("unrecognized list envelope, keys tried: %s", strings.Join(keys, ", "))
}
