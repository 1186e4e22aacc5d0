package codec

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is matched by every decoding failure returned from this package.
var ErrMalformed = errors.New("malformed encoded value")

// Error reports a string that could not be decoded.
type Error struct {
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return ErrMalformed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrMalformed.Error(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrMalformed for every codec error.
func (e *Error) Is(target error) bool {
	return target == ErrMalformed
}

// Encode marshals v to JSON and returns it base64url-encoded without padding.
func Encode(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("codec: encode: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// Decode reverses Encode into v. Padded input is accepted.
func Decode(s string, v any) error {
	data, err := decodeBytes(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &Error{Err: err}
	}
	return nil
}

// DecodeValue decodes s into a generic value (maps, slices, float64, string, bool, nil).
func DecodeValue(s string) (any, error) {
	var v any
	if err := Decode(s, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func decodeBytes(s string) ([]byte, error) {
	s = strings.TrimRight(s, "=")
	if s == "" {
		return nil, &Error{Err: errors.New("empty input")}
	}
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, &Error{Err: err}
	}
	return data, nil
}
