// Package signing computes and checks keyed digests for token signatures.
//
// [Signable] binds an algorithm and data string and signs it with any key, [Checkable]
// binds a candidate signature to a [Signable] and tests keys against it, and [Compare]
// is the constant-time string comparison both rely on. Algorithms are looked up by
// name in a process-wide registry that callers may extend with [Register].
//
// # What this package must NOT do
//
//   - Know about token segments, headers, or key ordering.
//   - Retain keys beyond a single call.
package signing
