package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/MrEthical07/tokengrip"
)

// ReplacementHeader carries the replacement for a token signed with a deprecated key
// or algorithm.
const ReplacementHeader = "Tokengrip-Token"

// ErrNoCredential is passed to the reject hook when a request carries no usable
// token.
var ErrNoCredential = errors.New("middleware: missing or unusable credential")

type resultContextKey struct{}

// ResultFromContext returns the verification result stored by Guard or Optional.
func ResultFromContext(ctx context.Context) (*tokengrip.VerifyResult, bool) {
	res, ok := ctx.Value(resultContextKey{}).(*tokengrip.VerifyResult)
	return res, ok
}

// Option configures a guard.
type Option func(*options)

type options struct {
	cookie   string
	header   string
	onReject func(*http.Request, error)
}

// WithCookie also accepts the token from the named cookie, and rewrites the cookie
// when a replacement token is issued.
func WithCookie(name string) Option {
	return func(o *options) {
		o.cookie = name
	}
}

// WithReplacementHeader overrides the response header used for replacement tokens.
func WithReplacementHeader(name string) Option {
	return func(o *options) {
		if name != "" {
			o.header = name
		}
	}
}

// WithRejectHook calls fn for every request the guard turns away, before the 401 is
// written. err is ErrNoCredential or the Grip's verification error.
func WithRejectHook(fn func(r *http.Request, err error)) Option {
	return func(o *options) {
		o.onReject = fn
	}
}

// Guard only passes requests that carry a token grip accepts.
func Guard(grip *tokengrip.Grip, opts ...Option) func(http.Handler) http.Handler {
	return guard(grip, false, opts)
}

func guard(grip *tokengrip.Grip, optional bool, opts []Option) func(http.Handler) http.Handler {
	o := options{header: ReplacementHeader}
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if grip == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, present, ok := o.token(r)
			if !present && optional {
				next.ServeHTTP(w, r)
				return
			}
			if !ok {
				o.reject(w, r, ErrNoCredential)
				return
			}

			res, err := grip.Verify(token)
			if err != nil {
				o.reject(w, r, err)
				return
			}

			if res.Reissued() {
				w.Header().Set(o.header, res.NewToken)
				if o.cookie != "" {
					http.SetCookie(w, &http.Cookie{
						Name:     o.cookie,
						Value:    res.NewToken,
						Path:     "/",
						HttpOnly: true,
						Secure:   r.TLS != nil,
						SameSite: http.SameSiteLaxMode,
					})
				}
			}

			ctx := context.WithValue(r.Context(), resultContextKey{}, res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (o options) reject(w http.ResponseWriter, r *http.Request, err error) {
	if o.onReject != nil {
		o.onReject(r, err)
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// token returns the request credential. present reports whether the request carried
// any credential at all; ok whether it was usable.
func (o options) token(r *http.Request) (token string, present, ok bool) {
	if value := r.Header.Get("Authorization"); value != "" {
		token, ok = bearerToken(value)
		return token, true, ok
	}

	if o.cookie == "" {
		return "", false, false
	}
	c, err := r.Cookie(o.cookie)
	if err != nil {
		return "", false, false
	}
	return c.Value, true, c.Value != ""
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
