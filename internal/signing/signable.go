package signing

import (
	"crypto/hmac"
	"encoding/base64"
)

// Signable is an algorithm and data string that can be signed with any key.
type Signable struct {
	Algorithm string
	Data      string
}

func NewSignable(algorithm, data string) Signable {
	return Signable{Algorithm: algorithm, Data: data}
}

// Sign returns the base64url (unpadded) HMAC of s.Data under key.
func (s Signable) Sign(key string) (string, error) {
	fn, err := Lookup(s.Algorithm)
	if err != nil {
		return "", err
	}

	mac := hmac.New(fn, []byte(key))
	mac.Write([]byte(s.Data))

	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

// Sign is a one-shot form of NewSignable(algorithm, data).Sign(key).
func Sign(algorithm, key, data string) (string, error) {
	return NewSignable(algorithm, data).Sign(key)
}
