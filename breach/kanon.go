package breach

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/credkit/credkit/internal/constcmp"
)

const (
	// kanonPrefixLength is the number of leading digest hex characters sent
	// to the range endpoint. Five characters match the widely deployed
	// range-query convention.
	kanonPrefixLength = 5

	digestHexLength = sha1.Size * 2
)

// RangeClient fetches candidate digest suffixes for a digest prefix. Lines
// are formatted SUFFIX or SUFFIX:COUNT with uppercase hex suffixes. The
// transport (HTTP client, cached mirror, test fixture) belongs to the
// caller; this package performs no I/O of its own.
type RangeClient interface {
	Range(ctx context.Context, prefix string) ([]string, error)
}

// ErrNilRangeClient is returned by NewKAnonymityChecker when no client is
// supplied.
var ErrNilRangeClient = errors.New("range client must not be nil")

// KAnonymityChecker checks passwords against a breach corpus without
// revealing them: it computes a disposable SHA-1 digest (unrelated to the
// stored credential hash), transmits only its first five hex characters,
// and matches the remaining thirty-five locally in constant time.
type KAnonymityChecker struct {
	client RangeClient
}

// NewKAnonymityChecker wraps a RangeClient.
func NewKAnonymityChecker(client RangeClient) (*KAnonymityChecker, error) {
	if client == nil {
		return nil, ErrNilRangeClient
	}
	return &KAnonymityChecker{client: client}, nil
}

// Check queries the range for the password's digest prefix and compares
// each returned suffix against the locally kept remainder.
func (c *KAnonymityChecker) Check(ctx context.Context, password string) (Result, error) {
	sum := sha1.Sum([]byte(password))
	digest := strings.ToUpper(hex.EncodeToString(sum[:]))
	prefix := digest[:kanonPrefixLength]
	suffix := digest[kanonPrefixLength:]

	lines, err := c.client.Range(ctx, prefix)
	if err != nil {
		return Result{}, fmt.Errorf("breach range lookup: %w", err)
	}

	for _, line := range lines {
		candidate, count := splitRangeLine(line)
		if len(candidate) != digestHexLength-kanonPrefixLength {
			continue
		}
		if constcmp.EqualString(suffix, strings.ToUpper(candidate)) {
			reason := "password appears in a known breach corpus"
			if count > 0 {
				reason = fmt.Sprintf("password appears in a known breach corpus (%d occurrences)", count)
			}
			return Result{Breached: true, Reason: reason}, nil
		}
	}

	return Result{}, nil
}

func splitRangeLine(line string) (suffix string, count int64) {
	suffix = strings.TrimSpace(line)
	if idx := strings.IndexByte(suffix, ':'); idx >= 0 {
		if n, err := strconv.ParseInt(strings.TrimSpace(suffix[idx+1:]), 10, 64); err == nil {
			count = n
		}
		suffix = suffix[:idx]
	}
	return suffix, count
}
