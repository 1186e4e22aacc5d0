// Package middleware adapts a tokengrip.Grip to net/http.
//
// # Guards
//
//   - [Guard] rejects requests without a valid token.
//   - [Optional] lets requests without a credential through, but still rejects
//     credentials that fail verification.
//
// Both read the token from "Authorization: Bearer <token>" and, when [WithCookie] is
// set, from a cookie. A verified [tokengrip.VerifyResult] is stored in the request
// context ([ResultFromContext]). When the token was signed with a deprecated key or
// algorithm, the replacement is written to the [ReplacementHeader] response header
// (and the cookie, if configured) before the next handler runs, so clients rotate
// forward without a separate round trip.
//
// [WithRejectHook] observes rejections (for logging or throttling) without changing
// the response.
//
// # What this package must NOT do
//
//   - Sign, parse, or compare tokens itself (delegates to Grip.Verify).
//   - Distinguish failure kinds to the client: every rejection is a bare 401.
//   - Interpret payload contents.
package middleware
