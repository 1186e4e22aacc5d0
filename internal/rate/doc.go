// Package rate provides a Redis-backed fixed-window counter used to throttle clients
// that keep presenting tokens a Grip rejects.
//
// # Window semantics
//
// INCR + conditional EXPIRE on the first hit. A window opens on the first failure
// for an identifier and lasts Config.Window; the counter is gone when it closes.
// Keys are "<prefix>:<identifier>".
//
// # What this package must NOT do
//
//   - Count successful verifications.
//   - Decide what an identifier is (client IP, API key, tenant); callers pass it in.
package rate
