package password

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BcryptConfig holds the work-factor strategy parameters.
type BcryptConfig struct {
	Cost int
}

type bcryptHasher struct {
	config BcryptConfig
}

func newBcrypt(cfg BcryptConfig) (*bcryptHasher, error) {
	if cfg.Cost < bcrypt.MinCost || cfg.Cost > bcrypt.MaxCost {
		return nil, errors.New("bcrypt cost out of range")
	}
	return &bcryptHasher{config: cfg}, nil
}

func (b *bcryptHasher) Algorithm() Algorithm {
	return AlgorithmBcrypt
}

func (b *bcryptHasher) Params() Params {
	return Params{Cost: b.config.Cost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	// Salt generation and encoding are handled by the library per call.
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), b.config.Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (b *bcryptHasher) Verify(password, encoded string) (bool, error) {
	if password == "" {
		return false, ErrEmptyPassword
	}
	if !strings.HasPrefix(encoded, "$2") {
		return false, errors.New("not a bcrypt hash")
	}

	// CompareHashAndPassword is constant-time over the derived key.
	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}

func (b *bcryptHasher) NeedsRehash(encoded string) (bool, error) {
	cost, err := bcrypt.Cost([]byte(encoded))
	if err != nil {
		return false, err
	}
	return cost < b.config.Cost, nil
}
