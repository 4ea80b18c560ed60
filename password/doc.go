// Package password implements the credential hashing strategies used by the
// credkit engine: bcrypt (work-factor), argon2id (memory-hard), and scrypt
// (tunable-cost).
//
// Every strategy satisfies [Hasher] and is selected at construction through
// [New]. A stored credential's algorithm tag dictates which strategy verifies
// it; strategies reject encodings they did not produce rather than guessing
// from hash shape, so cross-algorithm verification fails closed.
//
// Package password performs no I/O and keeps no state beyond its immutable
// configuration. All types are safe for concurrent use after construction.
package password
