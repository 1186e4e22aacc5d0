package format

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MrEthical07/tokengrip"
	"github.com/MrEthical07/tokengrip/codec"
)

// Format is the detected kind of a credential string.
type Format uint8

const (
	Unknown Format = iota
	Tokengrip
	JWT
)

func (f Format) String() string {
	switch f {
	case Tokengrip:
		return "tokengrip"
	case JWT:
		return "jwt"
	default:
		return "unknown"
	}
}

// Info is what can be read from a credential without a key. None of it is
// authenticated.
type Info struct {
	Format    Format
	Algorithm string
	// Payload is the decoded payload for Tokengrip tokens and the claims for JWTs. It
	// is nil when the payload segment does not decode.
	Payload any
}

// Detect returns the format of s.
func Detect(s string) Format {
	return Inspect(s).Format
}

// Inspect detects the format of s and decodes its header algorithm and payload.
func Inspect(s string) Info {
	s = strings.TrimSpace(s)
	if s == "" {
		return Info{}
	}

	if tokengrip.IsToken(s) {
		return inspectTokengrip(s)
	}
	return inspectJWT(s)
}

func inspectTokengrip(s string) Info {
	info := Info{Format: Tokengrip}

	header, _, _ := strings.Cut(s, ".")
	var h tokengrip.Header
	if err := codec.Decode(header, &h); err == nil {
		info.Algorithm = h.Algorithm
	}
	if payload, err := tokengrip.DecodePayload(s); err == nil {
		info.Payload = payload
	}
	return info
}

func inspectJWT(s string) Info {
	claims := jwt.MapClaims{}
	token, _, err := jwt.NewParser().ParseUnverified(s, claims)
	if err == nil {
		return Info{Format: JWT, Algorithm: token.Method.Alg(), Payload: map[string]any(claims)}
	}

	// A JWT whose "alg" this process has no signing method for is still a JWT.
	if token != nil && errors.Is(err, jwt.ErrTokenUnverifiable) {
		if alg, ok := token.Header["alg"].(string); ok && alg != "" {
			return Info{Format: JWT, Algorithm: alg, Payload: map[string]any(claims)}
		}
	}
	return Info{}
}
