package token

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTokenExpired reports a token whose expiry is not strictly in the
	// future at verification time.
	ErrTokenExpired = errors.New("token expired")
	// ErrBadIssuer reports an issuer mismatch.
	ErrBadIssuer = errors.New("token issuer mismatch")
	// ErrBadAudience reports an audience set mismatch.
	ErrBadAudience = errors.New("token audience mismatch")
	// ErrTokenMalformed reports a token that failed signature verification
	// or could not be decoded at all.
	ErrTokenMalformed = errors.New("token malformed or signature invalid")
	// ErrWrongTokenType reports a type mismatch, e.g. a refresh token
	// presented where an access token is expected.
	ErrWrongTokenType = errors.New("wrong token type")
	// ErrMissingJTI reports an absent jti claim while JTI is required.
	ErrMissingJTI = errors.New("token missing jti")
	// ErrTokenRevoked reports a jti found in the configured revocation store.
	ErrTokenRevoked = errors.New("token revoked")
)

const fingerprintSize = 16

// Config is the immutable token lifecycle configuration, injected at
// construction. Encryptor, RevocationStore, and VerifyCache are optional
// collaborators; when absent their stages are skipped.
type Config struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Audience      []string
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
	EnableJTI     bool

	Encryptor       Encryptor
	RevocationStore RevocationStore
	VerifyCache     VerifyCache
	VerifyCacheTTL  time.Duration
}

// Encryptor is the optional encryption seam around signed tokens. When no
// Encryptor is configured the wrapper is a pass-through.
type Encryptor interface {
	Encrypt(plaintext []byte) ([]byte, error)
	Decrypt(ciphertext []byte) ([]byte, error)
}

// Pair bundles the result of issuance and refresh operations.
// RefreshRotated reports whether the refresh token in the pair is newly
// issued or carried over from the request.
type Pair struct {
	AccessToken    string
	AccessClaims   *Claims
	RefreshToken   string
	RefreshClaims  *Claims
	RefreshRotated bool
}

// Manager drives the token lifecycle over a Codec. A token moves
// issued → valid → expired or revoked, never backwards.
type Manager struct {
	config Config
	codec  *Codec
	cache  VerifyCache

	// now is the clock used for issuance and expiry checks. Tests override
	// it; production always uses time.Now.
	now func() time.Time
}

// NewManager validates the configuration and key material. TTLs must be
// positive; key problems fail here rather than on the first issuance.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("access TTL must be > 0")
	}
	if cfg.RefreshTTL <= 0 {
		return nil, errors.New("refresh TTL must be > 0")
	}
	if cfg.RefreshTTL < cfg.AccessTTL {
		return nil, errors.New("refresh TTL must be >= access TTL")
	}
	if cfg.VerifyCacheTTL < 0 {
		return nil, errors.New("verify cache TTL must be >= 0")
	}
	if cfg.VerifyCacheTTL == 0 {
		cfg.VerifyCacheTTL = 5 * time.Minute
	}
	if cfg.SigningMethod == "" {
		cfg.SigningMethod = MethodHS256
	}

	codec, err := NewCodec(CodecConfig{
		SigningMethod: cfg.SigningMethod,
		PrivateKey:    cfg.PrivateKey,
		PublicKey:     cfg.PublicKey,
	})
	if err != nil {
		return nil, err
	}

	cache := cfg.VerifyCache
	if cache == nil {
		cache = NopCache{}
	}

	return &Manager{
		config: cfg,
		codec:  codec,
		cache:  cache,
		now:    time.Now,
	}, nil
}

// IssueAccess issues an access token for subject. Extension claims merge
// into the claim set; entries named like reserved claims are silently
// dropped. A fresh fingerprint is always attached, and a fresh JTI when
// JTI is enabled.
func (m *Manager) IssueAccess(subject string, extra map[string]any) (string, *Claims, error) {
	return m.issue(TypeAccess, subject, "", extra, m.config.AccessTTL)
}

// IssueRefresh issues a refresh token for subject. accessJTI, when
// non-empty and JTI is enabled, is recorded as the ati claim linking this
// refresh token to the access token issued alongside it; otherwise the
// claim is omitted.
func (m *Manager) IssueRefresh(subject, accessJTI string, extra map[string]any) (string, *Claims, error) {
	return m.issue(TypeRefresh, subject, accessJTI, extra, m.config.RefreshTTL)
}

// IssuePair issues an access token and a refresh token linked to it.
func (m *Manager) IssuePair(subject string, extra map[string]any) (Pair, error) {
	accessToken, accessClaims, err := m.IssueAccess(subject, extra)
	if err != nil {
		return Pair{}, err
	}

	refreshToken, refreshClaims, err := m.IssueRefresh(subject, accessClaims.ID, extra)
	if err != nil {
		return Pair{}, err
	}

	return Pair{
		AccessToken:    accessToken,
		AccessClaims:   accessClaims,
		RefreshToken:   refreshToken,
		RefreshClaims:  refreshClaims,
		RefreshRotated: true,
	}, nil
}

func (m *Manager) issue(typ Type, subject, accessJTI string, extra map[string]any, ttl time.Duration) (string, *Claims, error) {
	if subject == "" {
		return "", nil, errors.New("subject must not be empty")
	}

	fingerprint, err := newFingerprint()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	claims := &Claims{
		Subject:     subject,
		Type:        typ,
		IssuedAt:    now,
		ExpiresAt:   now.Add(ttl),
		Issuer:      m.config.Issuer,
		Audience:    append([]string(nil), m.config.Audience...),
		Fingerprint: fingerprint,
		Extra:       copyExtra(extra),
	}
	if m.config.EnableJTI {
		claims.ID = uuid.NewString()
		if accessJTI != "" {
			claims.AccessTokenID = accessJTI
		}
	}

	signed, err := m.codec.Sign(claims.toMap())
	if err != nil {
		return "", nil, err
	}

	wrapped, err := m.wrap(signed)
	if err != nil {
		return "", nil, err
	}

	return wrapped, claims, nil
}

// Verify validates a token end to end: signature, issuer, audience, expiry,
// declared type, JTI presence, and — when a revocation store is configured —
// revocation. Signature failure short-circuits before any claim inspection.
func (m *Manager) Verify(ctx context.Context, tokenStr string, expected Type) (*Claims, error) {
	return m.verify(ctx, tokenStr, expected, true)
}

// Inspect is Verify without the expiry check. It exists solely for reading
// the claims of an already-expired token; every other stage still applies.
func (m *Manager) Inspect(ctx context.Context, tokenStr string, expected Type) (*Claims, error) {
	return m.verify(ctx, tokenStr, expected, false)
}

func (m *Manager) verify(ctx context.Context, tokenStr string, expected Type, checkExpiry bool) (*Claims, error) {
	now := m.now()
	cacheKey := CacheKey(tokenStr)

	if checkExpiry {
		if claims, ok := m.cache.Get(cacheKey); ok {
			// Cache entries outlive nothing: TTL is capped at the token's
			// remaining lifetime, but expiry is still re-checked. The cached
			// claims are cloned so caller mutations never reach the cache.
			if claims.Type == expected && claims.ExpiresAt.After(now) {
				return claims.clone(), nil
			}
		}
	}

	signed, err := m.unwrap(tokenStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	raw, err := m.codec.Parse(signed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	claims, err := claimsFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}

	if claims.Issuer != m.config.Issuer {
		return nil, ErrBadIssuer
	}
	if !sameAudience(claims.Audience, m.config.Audience) {
		return nil, ErrBadAudience
	}
	if checkExpiry && !claims.ExpiresAt.After(now) {
		return nil, ErrTokenExpired
	}
	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}
	if m.config.EnableJTI && claims.ID == "" {
		return nil, ErrMissingJTI
	}

	if m.config.RevocationStore != nil && claims.ID != "" {
		revoked, err := m.config.RevocationStore.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrTokenRevoked
		}
	}

	if checkExpiry {
		ttl := m.config.VerifyCacheTTL
		if remaining := claims.ExpiresAt.Sub(now); remaining < ttl {
			ttl = remaining
		}
		m.cache.Put(cacheKey, claims.clone(), ttl)
	}

	return claims, nil
}

// Refresh verifies a refresh token and issues a fresh access token. The
// refresh token itself is reissued only when less than half of its lifetime
// remains, bounding rotation churn while limiting exposure of a long-lived
// secret. A rotated refresh token's ati references the new access token's
// JTI. When extra is nil the extension claims of the presented refresh
// token carry over.
func (m *Manager) Refresh(ctx context.Context, refreshToken string, extra map[string]any) (Pair, error) {
	refreshClaims, err := m.Verify(ctx, refreshToken, TypeRefresh)
	if err != nil {
		return Pair{}, err
	}

	if extra == nil {
		extra = refreshClaims.Extra
	}

	accessToken, accessClaims, err := m.IssueAccess(refreshClaims.Subject, extra)
	if err != nil {
		return Pair{}, err
	}

	pair := Pair{
		AccessToken:   accessToken,
		AccessClaims:  accessClaims,
		RefreshToken:  refreshToken,
		RefreshClaims: refreshClaims,
	}

	remaining := refreshClaims.ExpiresAt.Sub(m.now())
	if remaining < m.config.RefreshTTL/2 {
		newRefresh, newClaims, err := m.IssueRefresh(refreshClaims.Subject, accessClaims.ID, extra)
		if err != nil {
			return Pair{}, err
		}
		pair.RefreshToken = newRefresh
		pair.RefreshClaims = newClaims
		pair.RefreshRotated = true
	}

	return pair, nil
}

// Revoke records jti as revoked and returns the full list of revoked ids:
// the jti itself plus a derived family marker when revokeFamily is set. The
// caller's storage layer consults these records on future verifications; a
// RevocationStore configured on the Manager makes Verify do so directly.
func (m *Manager) Revoke(ctx context.Context, jti string, revokeFamily bool) ([]string, error) {
	if jti == "" {
		return nil, errors.New("jti must not be empty")
	}

	ids := []string{jti}
	if revokeFamily {
		ids = append(ids, FamilyID(jti))
	}

	if store := m.config.RevocationStore; store != nil {
		now := m.now()
		for _, id := range ids {
			if err := store.Revoke(ctx, id, now); err != nil {
				return nil, err
			}
		}
	}

	return ids, nil
}

func (m *Manager) wrap(signed string) (string, error) {
	if m.config.Encryptor == nil {
		return signed, nil
	}
	sealed, err := m.config.Encryptor.Encrypt([]byte(signed))
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (m *Manager) unwrap(tokenStr string) (string, error) {
	if m.config.Encryptor == nil {
		return tokenStr, nil
	}
	sealed, err := base64.RawURLEncoding.DecodeString(tokenStr)
	if err != nil {
		return "", err
	}
	opened, err := m.config.Encryptor.Decrypt(sealed)
	if err != nil {
		return "", err
	}
	return string(opened), nil
}

func newFingerprint() (string, error) {
	buf := make([]byte, fingerprintSize)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func copyExtra(extra map[string]any) map[string]any {
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		out[k] = v
	}
	return out
}
