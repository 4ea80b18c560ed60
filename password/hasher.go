package password

import (
	"errors"
	"fmt"
	"time"
)

// Algorithm identifies a credential hashing strategy. The set is closed:
// verification never infers the strategy from hash shape, only from the tag
// stored alongside the hash.
type Algorithm string

const (
	// AlgorithmBcrypt is the work-factor strategy (per-call salt, cost rounds).
	AlgorithmBcrypt Algorithm = "bcrypt"
	// AlgorithmArgon2id is the memory-hard strategy (time/memory/parallelism).
	AlgorithmArgon2id Algorithm = "argon2id"
	// AlgorithmScrypt is the tunable-cost strategy (explicit salt, N/r/p).
	AlgorithmScrypt Algorithm = "scrypt"
)

var (
	// ErrEmptyPassword is returned when a hash or verify call receives an
	// empty password. Callers treat it as a user-correctable input error.
	ErrEmptyPassword = errors.New("password must not be empty")
	// ErrUnknownAlgorithm is returned by New for an algorithm outside the
	// supported set. It is a construction-time configuration error.
	ErrUnknownAlgorithm = errors.New("unknown password hashing algorithm")
)

// Record is the credential record produced by hashing. The caller owns
// persistence; this package only produces and consumes records.
type Record struct {
	Algorithm Algorithm
	Hash      string
	Params    Params
	CreatedAt time.Time
}

// Params records the cost parameters a credential was hashed with. Only the
// fields belonging to the record's algorithm are set. The encoded hash
// remains authoritative for verification; Params exists so the caller's
// storage layer can inspect credential strength without parsing encodings.
type Params struct {
	Cost int // bcrypt rounds

	Memory      uint32 // argon2id, in KB
	Time        uint32
	Parallelism uint8

	N int // scrypt
	R int
	P int
}

// Hasher is implemented by each hashing strategy.
//
// Hash produces a self-describing encoded hash with a fresh random salt per
// call. Verify recomputes the hash from the stored encoding and compares in
// constant time; it returns an error (not false) when the encoding does not
// belong to this strategy. NeedsRehash reports whether the stored encoding
// was produced with weaker parameters than the hasher is configured with.
// Params reports the parameters the hasher hashes with, for recording on
// freshly produced credentials.
type Hasher interface {
	Algorithm() Algorithm
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
	NeedsRehash(encoded string) (bool, error)
	Params() Params
}

// Config selects a strategy and carries the parameters for all three.
// Only the section matching Algorithm is consulted.
type Config struct {
	Algorithm Algorithm
	Bcrypt    BcryptConfig
	Argon2    Argon2Config
	Scrypt    ScryptConfig
}

// DefaultConfig returns the parameter set used when the caller does not
// supply one: bcrypt at cost 12, with argon2id and scrypt sections at their
// recommended baselines for verification of older records.
func DefaultConfig() Config {
	return Config{
		Algorithm: AlgorithmBcrypt,
		Bcrypt:    BcryptConfig{Cost: 12},
		Argon2: Argon2Config{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Scrypt: ScryptConfig{
			N:         32768,
			R:         8,
			P:         1,
			KeyLength: 32,
		},
	}
}

// New constructs the Hasher named by cfg.Algorithm. Invalid parameters and
// unknown algorithms fail here, at engine setup, never per call.
func New(cfg Config) (Hasher, error) {
	switch cfg.Algorithm {
	case AlgorithmBcrypt:
		return newBcrypt(cfg.Bcrypt)
	case AlgorithmArgon2id:
		return newArgon2(cfg.Argon2)
	case AlgorithmScrypt:
		return newScrypt(cfg.Scrypt)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, cfg.Algorithm)
	}
}

// NewAll constructs one hasher per supported algorithm from the same config.
// Engines use the full set so that verification can follow a stored record's
// algorithm tag even when it differs from the configured hashing strategy.
func NewAll(cfg Config) (map[Algorithm]Hasher, error) {
	out := make(map[Algorithm]Hasher, 3)
	for _, alg := range []Algorithm{AlgorithmBcrypt, AlgorithmArgon2id, AlgorithmScrypt} {
		c := cfg
		c.Algorithm = alg
		h, err := New(c)
		if err != nil {
			return nil, err
		}
		out[alg] = h
	}
	return out, nil
}
