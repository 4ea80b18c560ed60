package breach

import (
	"context"
	"fmt"
	"strings"
)

// Result is the outcome of a breach or policy check. Reason is human-readable
// and safe to surface to the end user when Breached is true.
type Result struct {
	Breached bool
	Reason   string
}

// Checker is consulted by the hashing engine before a password is hashed.
// Implementations must not retain the password.
type Checker interface {
	Check(ctx context.Context, password string) (Result, error)
}

// DefaultFragments is the built-in known-weak fragment list used when no
// custom list is configured.
var DefaultFragments = []string{
	"password",
	"qwerty",
	"123456",
	"letmein",
	"admin",
	"welcome",
	"iloveyou",
}

// StaticChecker flags passwords that case-insensitively contain any
// configured fragment. It is the heuristic placeholder for deployments
// without an external breach-intelligence source.
type StaticChecker struct {
	fragments []string
}

// NewStaticChecker builds a checker over the given fragment list, falling
// back to [DefaultFragments] when the list is empty. Fragments are matched
// lowercased.
func NewStaticChecker(fragments []string) *StaticChecker {
	if len(fragments) == 0 {
		fragments = DefaultFragments
	}

	lowered := make([]string, 0, len(fragments))
	for _, f := range fragments {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			lowered = append(lowered, f)
		}
	}

	return &StaticChecker{fragments: lowered}
}

// Check scans the lowercased password for every configured fragment.
func (c *StaticChecker) Check(_ context.Context, password string) (Result, error) {
	lowered := strings.ToLower(password)
	for _, fragment := range c.fragments {
		if strings.Contains(lowered, fragment) {
			return Result{
				Breached: true,
				Reason:   fmt.Sprintf("password contains the common pattern %q", fragment),
			}, nil
		}
	}
	return Result{}, nil
}
