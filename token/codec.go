package token

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SigningMethod selects the signature algorithm for the codec.
type SigningMethod string

const (
	// MethodHS256 signs with HMAC-SHA256 over a shared key.
	MethodHS256 SigningMethod = "hs256"
	// MethodEd25519 signs with an Ed25519 key pair.
	MethodEd25519 SigningMethod = "ed25519"
)

// CodecConfig carries key material for one signing method. For hs256 the
// private key doubles as the verification key; for ed25519 both halves are
// required and may be raw or PEM encoded.
type CodecConfig struct {
	SigningMethod SigningMethod
	PrivateKey    []byte
	PublicKey     []byte
}

// Codec encodes, signs, decodes, and verifies raw claim sets. It enforces
// nothing about claim content; registered-claim semantics belong to the
// Manager so validation order and the error taxonomy stay in one place.
type Codec struct {
	config CodecConfig
}

// NewCodec validates the key material for the configured method. Key
// problems surface here, at construction, never per call.
func NewCodec(cfg CodecConfig) (*Codec, error) {
	switch cfg.SigningMethod {
	case MethodHS256:
		if len(cfg.PrivateKey) < 32 {
			return nil, errors.New("hs256 requires a key of at least 32 bytes")
		}
	case MethodEd25519:
		if _, err := parseEdPrivateKey(cfg.PrivateKey); err != nil {
			return nil, err
		}
		if _, err := parseEdPublicKey(cfg.PublicKey); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported signing method %q", cfg.SigningMethod)
	}

	return &Codec{config: cfg}, nil
}

// Sign serializes and signs the claim set.
func (c *Codec) Sign(claims jwt.MapClaims) (string, error) {
	tok := jwt.NewWithClaims(c.method(), claims)

	signKey, err := c.signKey()
	if err != nil {
		return "", err
	}
	return tok.SignedString(signKey)
}

// Parse verifies the signature and algorithm and returns the raw claim set.
// Claim validation is deliberately disabled; a successful return means only
// that the token was produced with our key.
func (c *Codec) Parse(tokenStr string) (jwt.MapClaims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{c.method().Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != c.method().Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return c.verifyKey()
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

func (c *Codec) method() jwt.SigningMethod {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return jwt.SigningMethodEdDSA
	default:
		return jwt.SigningMethodHS256
	}
}

func (c *Codec) signKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPrivateKey(c.config.PrivateKey)
	default:
		return c.config.PrivateKey, nil
	}
}

func (c *Codec) verifyKey() (interface{}, error) {
	switch c.config.SigningMethod {
	case MethodEd25519:
		return parseEdPublicKey(c.config.PublicKey)
	default:
		return c.config.PrivateKey, nil
	}
}

func parseEdPrivateKey(key []byte) (ed25519.PrivateKey, error) {
	if len(key) == ed25519.PrivateKeySize {
		return ed25519.PrivateKey(key), nil
	}
	parsed, err := jwt.ParseEdPrivateKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 private key")
	}
	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, errors.New("invalid ed25519 private key type")
	}
	return edKey, nil
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
