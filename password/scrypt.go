package password

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/crypto/scrypt"

	"github.com/credkit/credkit/internal/constcmp"
)

// scryptSaltLength is fixed: the stored blob is salt || derived key and
// verification splits at this offset.
const scryptSaltLength = 32

// ScryptConfig holds the tunable-cost strategy parameters. N must be a
// power of two greater than one.
type ScryptConfig struct {
	N         int
	R         int
	P         int
	KeyLength int
}

type scryptHasher struct {
	config ScryptConfig
}

type parsedScrypt struct {
	n    int
	r    int
	p    int
	salt []byte
	key  []byte
}

func newScrypt(cfg ScryptConfig) (*scryptHasher, error) {
	if err := validateScryptParams(cfg.N, cfg.R, cfg.P); err != nil {
		return nil, err
	}
	if cfg.KeyLength < 16 {
		return nil, errors.New("scrypt key length must be >= 16")
	}
	return &scryptHasher{config: cfg}, nil
}

func validateScryptParams(n, r, p int) error {
	if n <= 1 || n&(n-1) != 0 {
		return errors.New("scrypt N must be a power of two > 1")
	}
	if r < 1 {
		return errors.New("scrypt r must be >= 1")
	}
	if p < 1 {
		return errors.New("scrypt p must be >= 1")
	}
	return nil
}

func (s *scryptHasher) Algorithm() Algorithm {
	return AlgorithmScrypt
}

func (s *scryptHasher) Params() Params {
	return Params{N: s.config.N, R: s.config.R, P: s.config.P}
}

// Hash derives a key over a fresh 32-byte salt and stores the cost
// parameters alongside base64(salt || key), so verification recomputes with
// the parameters in effect at hash time rather than the current
// configuration.
func (s *scryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, scryptSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	key, err := scrypt.Key([]byte(password), salt, s.config.N, s.config.R, s.config.P, s.config.KeyLength)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		"$%s$n=%d,r=%d,p=%d$%s",
		AlgorithmScrypt,
		s.config.N,
		s.config.R,
		s.config.P,
		base64.StdEncoding.EncodeToString(append(salt, key...)),
	), nil
}

// Verify splits the stored blob at the fixed salt offset, recomputes the
// derived key with the parameters recorded in the encoding, and compares
// through the constant-time comparator.
func (s *scryptHasher) Verify(password, encoded string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}

	parsed, err := parseScrypt(encoded)
	if err != nil {
		return false, err
	}

	key, err := scrypt.Key([]byte(password), parsed.salt, parsed.n, parsed.r, parsed.p, len(parsed.key))
	if err != nil {
		return false, err
	}

	return constcmp.Equal(key, parsed.key), nil
}

// NeedsRehash compares the parameters recorded in the encoding against the
// configured ones and recommends a rehash when any recorded cost is lower.
func (s *scryptHasher) NeedsRehash(encoded string) (bool, error) {
	parsed, err := parseScrypt(encoded)
	if err != nil {
		return false, err
	}

	if parsed.n < s.config.N {
		return true, nil
	}
	if parsed.r < s.config.R {
		return true, nil
	}
	if parsed.p < s.config.P {
		return true, nil
	}
	if len(parsed.key) != s.config.KeyLength {
		return true, nil
	}
	return false, nil
}

func parseScrypt(encoded string) (*parsedScrypt, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != "" {
		return nil, errors.New("not a scrypt hash")
	}
	if parts[1] != string(AlgorithmScrypt) {
		return nil, errors.New("not a scrypt hash")
	}

	pairs := strings.Split(parts[2], ",")
	if len(pairs) != 3 {
		return nil, errors.New("invalid scrypt parameter format")
	}

	var (
		parsed           parsedScrypt
		nSet, rSet, pSet bool
	)
	for _, pair := range pairs {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) != 2 {
			return nil, errors.New("invalid scrypt parameter entry")
		}
		v, err := strconv.Atoi(kv[1])
		if err != nil {
			return nil, errors.New("invalid scrypt parameter value")
		}
		switch kv[0] {
		case "n":
			parsed.n = v
			nSet = true
		case "r":
			parsed.r = v
			rSet = true
		case "p":
			parsed.p = v
			pSet = true
		default:
			return nil, errors.New("unsupported scrypt parameter")
		}
	}
	if !nSet || !rSet || !pSet {
		return nil, errors.New("missing scrypt parameters")
	}
	if err := validateScryptParams(parsed.n, parsed.r, parsed.p); err != nil {
		return nil, err
	}

	raw, err := base64.StdEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, errors.New("invalid scrypt blob encoding")
	}
	if len(raw) <= scryptSaltLength {
		return nil, errors.New("scrypt blob too short")
	}

	parsed.salt = raw[:scryptSaltLength]
	parsed.key = raw[scryptSaltLength:]
	return &parsed, nil
}
