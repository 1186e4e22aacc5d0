// Package tokengrip issues and verifies compact signed tokens that carry an arbitrary
// JSON payload, and lets the signing keys and hash algorithms be rotated while tokens
// issued under older settings keep working.
//
// A token is three base64url segments joined by dots:
//
//	<header>.<payload>.<signature>
//
// The header is {"typ":"Tokengrip","alg":"<algorithm>"}, the payload is the caller's
// value as JSON, and the signature is an HMAC of "<header>.<payload>" under one of the
// [Grip]'s keys.
//
// # Rotation
//
// A [Grip] holds an ordered key list and an ordered algorithm list. The first entry of
// each is current and signs every new token; the rest are deprecated and only verify.
// When [Grip.Verify] accepts a token through a deprecated key or algorithm it returns a
// replacement in [VerifyResult.NewToken], signed under the current pair with the same
// payload bytes. Prepend a new key with [Grip.RotateKey], let clients pick up
// replacements, then drop the old key with [Grip.RetireKey].
//
// Lists are only ever replaced whole (atomic pointer swap), so a verification running
// concurrently with a rotation sees either the old lists or the new ones.
//
// # Errors
//
// Every failure from Sign and Verify is an [*Error] with a [Kind]:
//
//   - [KindConfiguration]: no keys, no algorithms, or an algorithm without a digest.
//   - [KindMalformedToken]: wrong shape, undecodable header or payload, wrong "typ", or
//     an "alg" that is not in the Grip's list. No key is tried.
//   - [KindInvalidSignature]: no key matched. The message is always "Invalid signature".
//
// # What this package must NOT do
//
//   - Validate claims such as expiry or audience inside payloads.
//   - Store, schedule, or distribute keys.
//   - Decode a payload before its signature has been accepted (except through the
//     explicitly untrusted [DecodePayload]).
package tokengrip
