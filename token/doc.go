// Package token implements the signed-token side of the credkit engine: a
// low-level [Codec] that signs and parses raw claim sets, and a [Manager]
// that layers the token lifecycle on top of it — access/refresh issuance,
// ordered verification with a distinguishable error per failure mode,
// bounded refresh rotation, and revocation bookkeeping.
//
// The Manager verifies in a fixed order: signature, issuer, audience,
// expiry, declared type, JTI presence, revocation. A signature failure
// short-circuits before any claim is inspected. Each stage fails with its
// own sentinel error so callers can choose between retry, refresh, and
// re-authentication.
//
// The optional [VerifyCache] keys on a fast non-cryptographic digest of the
// token text, never on the token itself. The optional [Encryptor] and
// [RevocationStore] collaborators are pass-through and no-op respectively
// when not configured.
package token
