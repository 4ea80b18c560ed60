package credkit

import (
	"errors"
	"time"

	"github.com/credkit/credkit/password"
	"github.com/credkit/credkit/token"
)

// Config is the full engine configuration. It is cloned on the way into the
// builder and treated as immutable after Build; there is no global mutable
// state anywhere in the engine.
type Config struct {
	Password PasswordConfig
	Breach   BreachConfig
	Token    TokenConfig
	Cache    CacheConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects the hashing strategy and its parameters.
//
// MinVerifyDuration is a floor on observable verification time: when the
// underlying algorithm finishes faster, the engine pads to the floor so that
// algorithm-cost differences cannot leak which code path executed. It is
// applied uniformly regardless of the configured strategy.
type PasswordConfig struct {
	Algorithm password.Algorithm
	Cost      int // bcrypt rounds

	Memory      uint32 // argon2, in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	ScryptN         int
	ScryptR         int
	ScryptP         int
	ScryptKeyLength int

	MinVerifyDuration time.Duration
	TrackHistory      bool
	HistoryLimit      int
}

// BreachConfig controls the pre-hash breach/policy check. Enabled and
// Fragments govern only the built-in static checker; a breach.Checker
// injected on the builder takes precedence and runs regardless of Enabled.
type BreachConfig struct {
	Enabled   bool
	Fragments []string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig carries the token lifecycle settings. EnableEncryption turns
// on the encryption seam and requires an Encryptor on the builder.
type TokenConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      []string
	SigningMethod token.SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	EnableJTI     bool

	EnableEncryption bool
	VerifyCacheTTL   time.Duration
}

// CacheConfig bounds the built-in sharded verification cache. Disabled by
// default; an injected token.VerifyCache overrides it either way.
type CacheConfig struct {
	Enabled    bool
	MaxEntries int
}

// AuditConfig configures the buffered audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig enables the lock-free counter set and, optionally, the
// hash/verify latency histograms used for capacity planning.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

func defaultConfig() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:         password.AlgorithmBcrypt,
			Cost:              12,
			Memory:            64 * 1024,
			Time:              3,
			Parallelism:       2,
			SaltLength:        16,
			KeyLength:         32,
			ScryptN:           32768,
			ScryptR:           8,
			ScryptP:           1,
			ScryptKeyLength:   32,
			MinVerifyDuration: 100 * time.Millisecond,
			TrackHistory:      true,
			HistoryLimit:      password.DefaultHistoryLimit,
		},
		Breach: BreachConfig{
			Enabled: true,
		},
		Token: TokenConfig{
			AccessTTL:        time.Hour,
			RefreshTTL:       30 * 24 * time.Hour,
			SigningMethod:    token.MethodHS256,
			EnableJTI:        true,
			EnableEncryption: false,
			VerifyCacheTTL:   5 * time.Minute,
		},
		Cache: CacheConfig{
			Enabled:    false,
			MaxEntries: 4096,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.PrivateKey = cloneBytes(cfg.Token.PrivateKey)
	out.Token.PublicKey = cloneBytes(cfg.Token.PublicKey)
	out.Token.Audience = append([]string(nil), cfg.Token.Audience...)
	out.Breach.Fragments = append([]string(nil), cfg.Breach.Fragments...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cross-field consistency. Strategy-specific parameter
// floors are enforced by the password and token constructors; everything
// here is rejected before any of those run.
func (c *Config) Validate() error {
	switch c.Password.Algorithm {
	case password.AlgorithmBcrypt, password.AlgorithmArgon2id, password.AlgorithmScrypt:
		// valid
	default:
		return errors.New("unsupported password algorithm")
	}

	if c.Password.MinVerifyDuration < 0 {
		return errors.New("Password MinVerifyDuration must be >= 0")
	}
	if c.Password.TrackHistory && c.Password.HistoryLimit <= 0 {
		return errors.New("Password HistoryLimit must be > 0 when history tracking is enabled")
	}

	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.RefreshTTL <= 0 {
		return errors.New("Token RefreshTTL must be > 0")
	}
	if c.Token.RefreshTTL < c.Token.AccessTTL {
		return errors.New("Token RefreshTTL must be >= AccessTTL")
	}
	if c.Token.SigningMethod != token.MethodHS256 && c.Token.SigningMethod != token.MethodEd25519 {
		return errors.New("unsupported token signing method")
	}
	if len(c.Token.PrivateKey) == 0 {
		return errors.New("token signing requires PrivateKey")
	}
	if c.Token.SigningMethod == token.MethodEd25519 && len(c.Token.PublicKey) == 0 {
		return errors.New("ed25519 requires PublicKey")
	}
	if c.Token.VerifyCacheTTL < 0 {
		return errors.New("Token VerifyCacheTTL must be >= 0")
	}

	if c.Cache.Enabled && c.Cache.MaxEntries <= 0 {
		return errors.New("Cache MaxEntries must be > 0 when the cache is enabled")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
