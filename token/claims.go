package token

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Type declares what a token is for. The set is closed; verification
// compares the declared type against the caller's expectation.
type Type string

const (
	// TypeAccess marks short-lived tokens presented on API requests.
	TypeAccess Type = "access"
	// TypeRefresh marks long-lived tokens exchanged for new access tokens.
	TypeRefresh Type = "refresh"
)

const (
	claimSubject     = "sub"
	claimIssuedAt    = "iat"
	claimExpiresAt   = "exp"
	claimIssuer      = "iss"
	claimAudience    = "aud"
	claimID          = "jti"
	claimType        = "typ"
	claimAccessID    = "ati"
	claimFingerprint = "fgp"
)

// reservedClaims are owned by the Manager. Extension claims carrying these
// names are silently dropped at issuance.
var reservedClaims = map[string]struct{}{
	claimSubject:     {},
	claimIssuedAt:    {},
	claimExpiresAt:   {},
	claimIssuer:      {},
	claimAudience:    {},
	claimID:          {},
	claimType:        {},
	claimAccessID:    {},
	claimFingerprint: {},
}

// Claims is the decoded claim set of an issued token.
//
// AccessTokenID links a refresh token to the access token issued alongside
// it. It is informational bookkeeping only: a missing or stale value never
// fails verification. Fingerprint is a per-token random value for anti-replay
// bookkeeping, not a security boundary.
type Claims struct {
	Subject       string
	Type          Type
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Issuer        string
	Audience      []string
	ID            string
	AccessTokenID string
	Fingerprint   string
	Extra         map[string]any
}

// clone deep-copies the mutable fields so cached claims and claims handed
// to callers never share an Extra map or Audience slice.
func (c *Claims) clone() *Claims {
	if c == nil {
		return nil
	}
	out := *c
	out.Audience = append([]string(nil), c.Audience...)
	if c.Extra != nil {
		out.Extra = make(map[string]any, len(c.Extra))
		for k, v := range c.Extra {
			out.Extra[k] = v
		}
	}
	return &out
}

func (c *Claims) toMap() jwt.MapClaims {
	m := jwt.MapClaims{}
	for k, v := range c.Extra {
		if _, reserved := reservedClaims[k]; reserved {
			continue
		}
		m[k] = v
	}

	m[claimSubject] = c.Subject
	m[claimType] = string(c.Type)
	m[claimIssuedAt] = c.IssuedAt.Unix()
	m[claimExpiresAt] = c.ExpiresAt.Unix()
	m[claimFingerprint] = c.Fingerprint
	if c.Issuer != "" {
		m[claimIssuer] = c.Issuer
	}
	if len(c.Audience) > 0 {
		m[claimAudience] = c.Audience
	}
	if c.ID != "" {
		m[claimID] = c.ID
	}
	if c.AccessTokenID != "" {
		m[claimAccessID] = c.AccessTokenID
	}

	return m
}

func claimsFromMap(m jwt.MapClaims) (*Claims, error) {
	c := &Claims{Extra: map[string]any{}}

	for k, v := range m {
		switch k {
		case claimSubject:
			c.Subject, _ = v.(string)
		case claimType:
			if s, ok := v.(string); ok {
				c.Type = Type(s)
			}
		case claimIssuedAt:
			t, err := numericTime(v)
			if err != nil {
				return nil, errors.New("invalid iat claim")
			}
			c.IssuedAt = t
		case claimExpiresAt:
			t, err := numericTime(v)
			if err != nil {
				return nil, errors.New("invalid exp claim")
			}
			c.ExpiresAt = t
		case claimIssuer:
			c.Issuer, _ = v.(string)
		case claimAudience:
			aud, err := audienceSet(v)
			if err != nil {
				return nil, errors.New("invalid aud claim")
			}
			c.Audience = aud
		case claimID:
			c.ID, _ = v.(string)
		case claimAccessID:
			c.AccessTokenID, _ = v.(string)
		case claimFingerprint:
			c.Fingerprint, _ = v.(string)
		default:
			c.Extra[k] = v
		}
	}

	return c, nil
}

func numericTime(v any) (time.Time, error) {
	switch n := v.(type) {
	case float64:
		return time.Unix(int64(n), 0), nil
	case int64:
		return time.Unix(n, 0), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return time.Time{}, err
		}
		return time.Unix(i, 0), nil
	default:
		return time.Time{}, errors.New("not a numeric date")
	}
}

func audienceSet(v any) ([]string, error) {
	switch aud := v.(type) {
	case string:
		return []string{aud}, nil
	case []string:
		return aud, nil
	case []any:
		out := make([]string, 0, len(aud))
		for _, entry := range aud {
			s, ok := entry.(string)
			if !ok {
				return nil, errors.New("non-string audience entry")
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.New("unsupported audience encoding")
	}
}

// sameAudience reports exact set equality, order-insensitive. No wildcards.
func sameAudience(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, entry := range a {
		seen[entry]++
	}
	for _, entry := range b {
		seen[entry]--
		if seen[entry] < 0 {
			return false
		}
	}
	return true
}
