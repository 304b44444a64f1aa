package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

// decodeList accepts the two list shapes returned by admin list endpoints: a
// bare JSON array, or an object holding the array under key or "data".
// Anything else is an error.
func decodeList[T any](raw []byte, key string) ([]T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, apperrors.Decode(key, fmt.Errorf("empty body"))
	}

	var list []T
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, apperrors.Decode(key, err)
		}
		return list, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, apperrors.Decode(key, err)
	}
	for _, k := range []string{key, "data"} {
		v, ok := envelope[k]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, &list); err != nil {
			return nil, apperrors.Decode(key, err)
		}
		return list, nil
	}
	return nil, apperrors.Decode(key, fmt.Errorf("expected an array or an object with %q or \"data\"", key))
}
