// Package codec turns arbitrary values into URL-safe strings and back.
//
// A value is JSON-encoded and then base64url-encoded without padding, so the result
// never contains '.', '+', '/' or '=' and can be embedded as one segment of a
// dot-separated token.
//
// # What this package must NOT do
//
//   - Sign, verify, or otherwise interpret the encoded data.
//   - Import tokengrip (no upward imports).
package codec
