package tokengrip

import (
	"fmt"
	"slices"
	"strings"

	"github.com/MrEthical07/tokengrip/codec"
	"github.com/MrEthical07/tokengrip/internal/signing"
)

// TokenType is the value of the "typ" header field of every token.
const TokenType = "Tokengrip"

const segmentSeparator = "."

// Header is the first token segment. It is covered by the signature.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

type segments struct {
	header    string
	payload   string
	signature string
}

// data is the exact string the signature covers.
func (s segments) data() string {
	return s.header + segmentSeparator + s.payload
}

func encodeHeader(algorithm string) (string, error) {
	return codec.Encode(Header{Type: TokenType, Algorithm: algorithm})
}

// createToken appends the signature of data, which must already be
// "<header>.<payload>".
func createToken(algorithm, key, data string) (string, error) {
	sig, err := signing.Sign(algorithm, key, data)
	if err != nil {
		return "", unsupportedAlgorithmError(algorithm, err)
	}
	return data + segmentSeparator + sig, nil
}

// splitToken requires exactly three non-empty segments.
func splitToken(token string) (segments, error) {
	parts := strings.Split(token, segmentSeparator)
	if len(parts) != 3 {
		return segments{}, malformedError(msgMalformed, nil)
	}
	for _, p := range parts {
		if p == "" {
			return segments{}, malformedError(msgMalformed, nil)
		}
	}
	return segments{header: parts[0], payload: parts[1], signature: parts[2]}, nil
}

func decodeSegment(segment string) (any, error) {
	v, err := codec.DecodeValue(segment)
	if err != nil {
		return nil, malformedError(msgInvalidJSON, err)
	}
	return v, nil
}

// headerAlgorithm validates the header segment against the allowed algorithms and
// returns its "alg". The type is checked before the algorithm is looked at.
func headerAlgorithm(segment string, allowed []string) (string, error) {
	decoded, err := decodeSegment(segment)
	if err != nil {
		return "", err
	}

	fields, _ := decoded.(map[string]any)
	if typ, _ := fields["typ"].(string); typ != TokenType {
		return "", malformedError(msgNotTokengrip, nil)
	}

	raw, present := fields["alg"]
	algorithm, isString := raw.(string)
	if !isString || !slices.Contains(allowed, algorithm) {
		name := algorithm
		if !isString && present && raw != nil {
			name = fmt.Sprint(raw)
		}
		return "", disallowedAlgorithmError(name)
	}
	return algorithm, nil
}

// DecodePayload returns the decoded payload segment of token without checking its
// signature.
//
// The result must not be trusted until the token has been verified by a Grip; use
// [Grip.CheckSignature] afterwards to avoid decoding the payload twice.
func DecodePayload(token string) (any, error) {
	segment, err := payloadSegment(token)
	if err != nil {
		return nil, err
	}
	return decodeSegment(segment)
}

// DecodePayloadInto is DecodePayload for a caller-supplied destination.
func DecodePayloadInto(token string, v any) error {
	segment, err := payloadSegment(token)
	if err != nil {
		return err
	}
	return decodePayloadInto(segment, v)
}

func decodePayloadInto(segment string, v any) error {
	if err := codec.Decode(segment, v); err != nil {
		return malformedError(msgInvalidJSON, err)
	}
	return nil
}

func payloadSegment(token string) (string, error) {
	parts := strings.Split(token, segmentSeparator)
	if len(parts) < 2 || parts[1] == "" {
		return "", malformedError(msgMalformed, nil)
	}
	return parts[1], nil
}

// IsToken reports whether s looks like a Tokengrip token. Only the header is decoded;
// the signature is not checked. It never fails: any decoding problem yields false.
func IsToken(s string) bool {
	header, _, _ := strings.Cut(s, segmentSeparator)
	if header == "" {
		return false
	}

	decoded, err := codec.DecodeValue(header)
	if err != nil {
		return false
	}
	fields, _ := decoded.(map[string]any)
	typ, _ := fields["typ"].(string)
	return typ == TokenType
}
