package password

import (
	"errors"
	"strings"
	"testing"
)

func testConfig() Config {
	// Minimum-strength parameters keep the strategy matrix fast while still
	// exercising real derivations.
	return Config{
		Bcrypt: BcryptConfig{Cost: 4},
		Argon2: Argon2Config{
			Memory:      8 * 1024,
			Time:        1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		},
		Scrypt: ScryptConfig{
			N:         1024,
			R:         8,
			P:         1,
			KeyLength: 32,
		},
	}
}

func allHashers(t *testing.T) map[Algorithm]Hasher {
	t.Helper()

	hashers, err := NewAll(testConfig())
	if err != nil {
		t.Fatalf("NewAll error: %v", err)
	}
	return hashers
}

func TestHashAndVerifyAllAlgorithms(t *testing.T) {
	const secret = "Tr0ub4dor&3"

	for alg, h := range allHashers(t) {
		encoded, err := h.Hash(secret)
		if err != nil {
			t.Fatalf("%s: Hash error: %v", alg, err)
		}

		ok, err := h.Verify(secret, encoded)
		if err != nil {
			t.Fatalf("%s: Verify error: %v", alg, err)
		}
		if !ok {
			t.Fatalf("%s: expected verification to succeed", alg)
		}
	}
}

func TestVerifyFailsForMutationAtEveryPosition(t *testing.T) {
	const secret = "S3cret-pw"

	for alg, h := range allHashers(t) {
		encoded, err := h.Hash(secret)
		if err != nil {
			t.Fatalf("%s: Hash error: %v", alg, err)
		}

		for i := 0; i < len(secret); i++ {
			mutated := []byte(secret)
			mutated[i] ^= 0x01

			ok, err := h.Verify(string(mutated), encoded)
			if err != nil {
				t.Fatalf("%s: Verify error at position %d: %v", alg, i, err)
			}
			if ok {
				t.Fatalf("%s: mutation at position %d verified", alg, i)
			}
		}
	}
}

func TestHashIsSaltedPerCall(t *testing.T) {
	const secret = "repeatable-input"

	for alg, h := range allHashers(t) {
		first, err := h.Hash(secret)
		if err != nil {
			t.Fatalf("%s: Hash error: %v", alg, err)
		}
		second, err := h.Hash(secret)
		if err != nil {
			t.Fatalf("%s: Hash error: %v", alg, err)
		}

		if first == second {
			t.Fatalf("%s: two hashes of the same password are identical", alg)
		}

		for _, encoded := range []string{first, second} {
			ok, err := h.Verify(secret, encoded)
			if err != nil {
				t.Fatalf("%s: Verify error: %v", alg, err)
			}
			if !ok {
				t.Fatalf("%s: verification failed against one of two salted hashes", alg)
			}
		}
	}
}

func TestEmptyPasswordRejected(t *testing.T) {
	for alg, h := range allHashers(t) {
		if _, err := h.Hash(""); !errors.Is(err, ErrEmptyPassword) {
			t.Fatalf("%s: Hash(\"\") error = %v, want ErrEmptyPassword", alg, err)
		}
		if _, err := h.Verify("", "whatever"); !errors.Is(err, ErrEmptyPassword) {
			t.Fatalf("%s: Verify(\"\") error = %v, want ErrEmptyPassword", alg, err)
		}
	}
}

func TestCrossAlgorithmVerificationFailsClosed(t *testing.T) {
	hashers := allHashers(t)

	encodings := map[Algorithm]string{}
	for alg, h := range hashers {
		encoded, err := h.Hash("cross-check")
		if err != nil {
			t.Fatalf("%s: Hash error: %v", alg, err)
		}
		encodings[alg] = encoded
	}

	for producer, encoded := range encodings {
		for verifier, h := range hashers {
			if producer == verifier {
				continue
			}
			ok, err := h.Verify("cross-check", encoded)
			if ok {
				t.Fatalf("%s verified a %s hash", verifier, producer)
			}
			if err == nil {
				t.Fatalf("%s silently rejected a %s hash without error", verifier, producer)
			}
		}
	}
}

func TestArgon2PHCEncoding(t *testing.T) {
	h := allHashers(t)[AlgorithmArgon2id]

	encoded, err := h.Hash("phc-format-check")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC prefix: %s", encoded)
	}
}

func TestNeedsRehash(t *testing.T) {
	cfg := testConfig()

	weak, err := New(Config{Algorithm: AlgorithmBcrypt, Bcrypt: BcryptConfig{Cost: 4}})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	encoded, err := weak.Hash("upgrade-me")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	strong, err := New(Config{Algorithm: AlgorithmBcrypt, Bcrypt: BcryptConfig{Cost: 6}})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	upgrade, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if !upgrade {
		t.Fatal("expected rehash recommendation for weaker cost")
	}

	same, err := weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash error: %v", err)
	}
	if same {
		t.Fatal("unexpected rehash recommendation for equal cost")
	}

	// scrypt encodings carry their parameters too; a raised N recommends a
	// rehash, an unchanged one does not.
	cfg.Algorithm = AlgorithmScrypt
	sc, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	scEncoded, err := sc.Hash("carries-params")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if upgrade, err := sc.NeedsRehash(scEncoded); err != nil || upgrade {
		t.Fatalf("scrypt NeedsRehash = (%v, %v), want (false, nil)", upgrade, err)
	}

	raised := cfg
	raised.Scrypt.N = cfg.Scrypt.N * 2
	scStrong, err := New(raised)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if upgrade, err := scStrong.NeedsRehash(scEncoded); err != nil || !upgrade {
		t.Fatalf("scrypt NeedsRehash = (%v, %v), want (true, nil)", upgrade, err)
	}
}

func TestScryptEncodingCarriesParameters(t *testing.T) {
	h := allHashers(t)[AlgorithmScrypt]

	encoded, err := h.Hash("format-check")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$scrypt$n=1024,r=8,p=1$") {
		t.Fatalf("unexpected scrypt prefix: %s", encoded)
	}
}

func TestScryptVerifyAfterParameterChange(t *testing.T) {
	const secret = "S3cure!Tr0ut-91"

	cfg := testConfig()
	cfg.Algorithm = AlgorithmScrypt
	old, err := New(cfg)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	encoded, err := old.Hash(secret)
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}

	// A credential hashed under the old cost must keep verifying after the
	// configured cost is raised; the encoding's recorded parameters win.
	raised := cfg
	raised.Scrypt.N = cfg.Scrypt.N * 2
	current, err := New(raised)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	ok, err := current.Verify(secret, encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if !ok {
		t.Fatal("stored credential must verify across a parameter change")
	}

	ok, err = current.Verify("wrong-password", encoded)
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if ok {
		t.Fatal("wrong password must not verify")
	}
}

func TestParamsReflectConfiguration(t *testing.T) {
	hashers := allHashers(t)

	if p := hashers[AlgorithmBcrypt].Params(); p.Cost != 4 {
		t.Fatalf("bcrypt params = %+v, want cost 4", p)
	}
	if p := hashers[AlgorithmArgon2id].Params(); p.Memory != 8*1024 || p.Time != 1 || p.Parallelism != 1 {
		t.Fatalf("argon2 params = %+v", p)
	}
	if p := hashers[AlgorithmScrypt].Params(); p.N != 1024 || p.R != 8 || p.P != 1 {
		t.Fatalf("scrypt params = %+v", p)
	}
}

func TestNewRejectsBadConfiguration(t *testing.T) {
	cases := []Config{
		{Algorithm: "md5"},
		{Algorithm: AlgorithmBcrypt, Bcrypt: BcryptConfig{Cost: 99}},
		{Algorithm: AlgorithmArgon2id, Argon2: Argon2Config{Memory: 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}},
		{Algorithm: AlgorithmScrypt, Scrypt: ScryptConfig{N: 1000, R: 8, P: 1, KeyLength: 32}},
		{Algorithm: AlgorithmScrypt, Scrypt: ScryptConfig{N: 1024, R: 0, P: 1, KeyLength: 32}},
	}

	for _, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Fatalf("New(%+v) succeeded, want construction error", cfg)
		}
	}
}
