package credkit

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/credkit/credkit/breach"
	"github.com/credkit/credkit/password"
	"github.com/credkit/credkit/token"
)

// Builder assembles an Engine from a Config and optional collaborators.
// Construction is allocation-only until Build; Build validates everything
// and fails fast on configuration errors so a misconfigured engine never
// serves a request.
type Builder struct {
	config Config
	redis  *redis.Client

	breachChecker breach.Checker
	verifyCache   token.VerifyCache
	revocations   token.RevocationStore
	encryptor     token.Encryptor
	auditSink     AuditSink

	built bool
}

// New returns a Builder carrying the default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the configuration. The config is cloned; later
// mutation of cfg by the caller does not affect the builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the revocation store. Without
// it (and without WithRevocationStore) verification skips revocation checks.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithBreachChecker replaces the built-in static fragment checker, e.g.
// with a breach.KAnonymityChecker over an external range endpoint. An
// injected checker is always consulted; Breach.Enabled gates only the
// built-in default.
func (b *Builder) WithBreachChecker(checker breach.Checker) *Builder {
	b.breachChecker = checker
	return b
}

// WithVerifyCache replaces the verification cache selected by CacheConfig.
func (b *Builder) WithVerifyCache(cache token.VerifyCache) *Builder {
	b.verifyCache = cache
	return b
}

// WithRevocationStore replaces the revocation store; it takes precedence
// over WithRedis.
func (b *Builder) WithRevocationStore(store token.RevocationStore) *Builder {
	b.revocations = store
	return b
}

// WithEncryptor supplies the token encryption seam. Required when
// Token.EnableEncryption is set.
func (b *Builder) WithEncryptor(enc token.Encryptor) *Builder {
	b.encryptor = enc
	return b
}

// WithAuditSink supplies the destination for audit events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and constructs the engine. A Builder
// builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := b.config.Validate(); err != nil {
		return nil, err
	}
	if b.config.Token.EnableEncryption && b.encryptor == nil {
		return nil, errors.New("Token EnableEncryption requires an Encryptor")
	}

	hashers, err := password.NewAll(passwordConfigFrom(b.config.Password))
	if err != nil {
		return nil, err
	}
	primary, ok := hashers[b.config.Password.Algorithm]
	if !ok {
		return nil, password.ErrUnknownAlgorithm
	}

	checker := b.breachChecker
	if checker == nil && b.config.Breach.Enabled {
		checker = breach.NewStaticChecker(b.config.Breach.Fragments)
	}

	revocations := b.revocations
	if revocations == nil && b.redis != nil {
		revocations = newRedisRevocationStore(b.redis, b.config.Token.RefreshTTL)
	}

	cache := b.verifyCache
	if cache == nil && b.config.Cache.Enabled {
		cache = token.NewShardedCache(b.config.Cache.MaxEntries)
	}

	var encryptor token.Encryptor
	if b.config.Token.EnableEncryption {
		encryptor = b.encryptor
	}

	tokens, err := token.NewManager(token.Config{
		AccessTTL:       b.config.Token.AccessTTL,
		RefreshTTL:      b.config.Token.RefreshTTL,
		Issuer:          b.config.Token.Issuer,
		Audience:        b.config.Token.Audience,
		SigningMethod:   b.config.Token.SigningMethod,
		PrivateKey:      b.config.Token.PrivateKey,
		PublicKey:       b.config.Token.PublicKey,
		EnableJTI:       b.config.Token.EnableJTI,
		Encryptor:       encryptor,
		RevocationStore: revocations,
		VerifyCache:     cache,
		VerifyCacheTTL:  b.config.Token.VerifyCacheTTL,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config:      b.config,
		hasher:      primary,
		hashers:     hashers,
		breach:      checker,
		tokens:      tokens,
		revocations: revocations,
		metrics:     NewMetrics(b.config.Metrics),
		audit:       newAuditDispatcher(b.config.Audit, b.auditSink),
	}, nil
}

func passwordConfigFrom(cfg PasswordConfig) password.Config {
	return password.Config{
		Algorithm: cfg.Algorithm,
		Bcrypt: password.BcryptConfig{
			Cost: cfg.Cost,
		},
		Argon2: password.Argon2Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		},
		Scrypt: password.ScryptConfig{
			N:         cfg.ScryptN,
			R:         cfg.ScryptR,
			P:         cfg.ScryptP,
			KeyLength: cfg.ScryptKeyLength,
		},
	}
}
