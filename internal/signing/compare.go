package signing

import "crypto/subtle"

// Compare reports whether a and b are equal. The time taken does not depend on where
// the first differing byte is.
func Compare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
