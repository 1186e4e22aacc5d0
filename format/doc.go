// Package format tells Tokengrip tokens apart from JWTs and other strings without
// verifying anything.
//
// It exists for edges that receive bearer credentials of more than one kind, such as a
// gateway migrating from JWTs to Tokengrip tokens, and need to route a credential to
// the right verifier before spending an HMAC on it.
//
// # What this package must NOT do
//
//   - Verify signatures or trust any decoded field.
//   - Return errors: undecodable input is reported as [Unknown].
package format
