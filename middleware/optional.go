package middleware

import (
	"net/http"

	"github.com/MrEthical07/tokengrip"
)

// Optional passes requests without a credential untouched; ResultFromContext then
// reports false. A credential that is present but does not verify is still rejected.
func Optional(grip *tokengrip.Grip, opts ...Option) func(http.Handler) http.Handler {
	return guard(grip, true, opts)
}
