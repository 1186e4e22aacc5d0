package tokengrip

import (
	"errors"
	"fmt"
)

// Kind classifies every error returned by a Grip.
type Kind uint8

const (
	// KindUnknown is reported by KindOf for errors that did not come from this package.
	KindUnknown Kind = iota
	// KindConfiguration means the Grip could not operate with its current keys or
	// algorithms. It never depends on the token being processed.
	KindConfiguration
	// KindMalformedToken means the token could not be parsed, its header was rejected,
	// or its payload could not be decoded. No key was tried.
	KindMalformedToken
	// KindInvalidSignature means every configured key was tried and none matched.
	KindInvalidSignature
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindMalformedToken:
		return "malformed_token"
	case KindInvalidSignature:
		return "invalid_signature"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidState matches every KindConfiguration error.
	ErrInvalidState = errors.New("tokengrip: invalid state")
	// ErrInvalidToken matches KindMalformedToken and KindInvalidSignature errors: a
	// token with a bad signature is an invalid token too.
	ErrInvalidToken = errors.New("tokengrip: invalid token")
	// ErrInvalidSignature matches KindInvalidSignature errors only.
	ErrInvalidSignature = errors.New("tokengrip: invalid signature")
	// ErrConflictingConfig is wrapped when a Config sets both the single and list form
	// of the same field.
	ErrConflictingConfig = errors.New("tokengrip: conflicting configuration")
)

const (
	msgInvalidSignature = "Invalid signature"
	msgKeysEmpty        = "keys list is empty"
	msgAlgorithmsEmpty  = "algorithms list is empty"
	msgMalformed        = "Token is malformed"
	msgInvalidJSON      = "Invalid JSON in token"
	msgNotTokengrip     = "Token is not a Tokengrip token"
)

// Error is the single concrete error type returned by this package.
//
// Algorithm is set when an algorithm name is the subject of the failure, either a
// header algorithm that is not allowed or a configured algorithm that cannot be used.
// InvalidSignature errors never carry detail.
type Error struct {
	Kind      Kind
	Message   string
	Algorithm string
	Err       error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the package sentinels by kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidState:
		return e.Kind == KindConfiguration
	case ErrInvalidToken:
		return e.Kind == KindMalformedToken || e.Kind == KindInvalidSignature
	case ErrInvalidSignature:
		return e.Kind == KindInvalidSignature
	}
	return false
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func stateError(msg string, cause error) *Error {
	return &Error{Kind: KindConfiguration, Message: msg, Err: cause}
}

func malformedError(msg string, cause error) *Error {
	return &Error{Kind: KindMalformedToken, Message: msg, Err: cause}
}

func disallowedAlgorithmError(algorithm string) *Error {
	return &Error{
		Kind:      KindMalformedToken,
		Message:   fmt.Sprintf("Algorithm '%s' is not allowed", algorithm),
		Algorithm: algorithm,
	}
}

func unsupportedAlgorithmError(algorithm string, cause error) *Error {
	return &Error{
		Kind:      KindConfiguration,
		Message:   fmt.Sprintf("Algorithm '%s' is not supported", algorithm),
		Algorithm: algorithm,
		Err:       cause,
	}
}

func invalidSignatureError() *Error {
	return &Error{Kind: KindInvalidSignature, Message: msgInvalidSignature}
}
