package breach

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strings"
	"testing"
)

type fakeRangeClient struct {
	lines      []string
	err        error
	lastPrefix string
}

func (f *fakeRangeClient) Range(_ context.Context, prefix string) ([]string, error) {
	f.lastPrefix = prefix
	return f.lines, f.err
}

func digestParts(password string) (prefix, suffix string) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	return digest[:5], digest[5:]
}

func TestKAnonymityCheckerDetectsBreachedPassword(t *testing.T) {
	const password = "Password1!"
	prefix, suffix := digestParts(password)

	client := &fakeRangeClient{lines: []string{
		"0000000000000000000000000000000000A:3",
		suffix + ":1523",
		"FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF:9",
	}}
	checker, err := NewKAnonymityChecker(client)
	if err != nil {
		t.Fatalf("NewKAnonymityChecker error: %v", err)
	}

	result, err := checker.Check(context.Background(), password)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if !result.Breached {
		t.Fatal("expected breached result")
	}
	if !strings.Contains(result.Reason, "1523") {
		t.Fatalf("reason %q does not carry the occurrence count", result.Reason)
	}

	// Only the five-character prefix may leave the process.
	if client.lastPrefix != prefix {
		t.Fatalf("transmitted prefix %q, want %q", client.lastPrefix, prefix)
	}
	if len(client.lastPrefix) != 5 {
		t.Fatalf("transmitted %d digest characters, want 5", len(client.lastPrefix))
	}
}

func TestKAnonymityCheckerCleanPassword(t *testing.T) {
	client := &fakeRangeClient{lines: []string{
		"0000000000000000000000000000000000A:3",
	}}
	checker, err := NewKAnonymityChecker(client)
	if err != nil {
		t.Fatalf("NewKAnonymityChecker error: %v", err)
	}

	result, err := checker.Check(context.Background(), "rare-unbreached-passphrase-93")
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if result.Breached {
		t.Fatalf("clean password flagged: %s", result.Reason)
	}
}

func TestKAnonymityCheckerSuffixWithoutCount(t *testing.T) {
	const password = "no-count-line"
	_, suffix := digestParts(password)

	checker, err := NewKAnonymityChecker(&fakeRangeClient{lines: []string{strings.ToLower(suffix)}})
	if err != nil {
		t.Fatalf("NewKAnonymityChecker error: %v", err)
	}

	result, err := checker.Check(context.Background(), password)
	if err != nil {
		t.Fatalf("Check error: %v", err)
	}
	if !result.Breached {
		t.Fatal("expected match for lowercase suffix line without count")
	}
}

func TestKAnonymityCheckerLookupError(t *testing.T) {
	lookupErr := errors.New("range endpoint unavailable")
	checker, err := NewKAnonymityChecker(&fakeRangeClient{err: lookupErr})
	if err != nil {
		t.Fatalf("NewKAnonymityChecker error: %v", err)
	}

	if _, err := checker.Check(context.Background(), "whatever"); !errors.Is(err, lookupErr) {
		t.Fatalf("Check error = %v, want wrapped lookup error", err)
	}
}

func TestNewKAnonymityCheckerRequiresClient(t *testing.T) {
	if _, err := NewKAnonymityChecker(nil); !errors.Is(err, ErrNilRangeClient) {
		t.Fatalf("error = %v, want ErrNilRangeClient", err)
	}
}
