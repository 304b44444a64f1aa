package commerce

import (
	"encoding/json"
	"fmt"
	"io"

	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

const maxResponseBytes = 4 << 20

// decodeField reads a JSON object body and decodes the value under key into
// T. A missing key, a null value or a value of the wrong shape is an
// ErrDecode AppError; unknown sibling keys are ignored.
func decodeField[T any](body io.Reader, key string) (T, error) {
	var zero T
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&envelope); err != nil {
		return zero, apperrors.Decode(key, err)
	}
	raw, ok := envelope[key]
	if !ok || string(raw) == "null" {
		return zero, apperrors.Decode(key, fmt.Errorf("missing %q in response", key))
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return zero, apperrors.Decode(key, err)
	}
	return v, nil
}

// decodeBody decodes the whole body into T.
func decodeBody[T any](body io.Reader, what string) (T, error) {
	var v T
	if err := json.NewDecoder(io.LimitReader(body, maxResponseBytes)).Decode(&v); err != nil {
		return v, apperrors.Decode(what, err)
	}
	return v, nil
}
