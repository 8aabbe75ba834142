package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeList absorbs the two payload shapes the backend is known to emit for
// collection endpoints: a bare JSON array, or an object wrapping the array
// under a named field. A wrapper without the field normalizes to empty.
func decodeList[T any](data []byte, field string) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode %s array: %w", field, err)
		}
		return list, nil
	}

	var wrap map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &wrap); err != nil {
		return nil, fmt.Errorf("decode %s wrapper: %w", field, err)
	}
	raw, ok := wrap[field]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return []T{}, nil
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s field: %w", field, err)
	}
	return list, nil
}
