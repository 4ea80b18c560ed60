package credkit

import (
	"errors"

	"github.com/credkit/credkit/password"
	"github.com/credkit/credkit/token"
)

var (
	// ErrEngineNotReady is returned by Engine methods on a nil or
	// unconstructed engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrPasswordBreached rejects a password that failed the breach/policy
	// check. The wrapped message carries the actionable reason.
	ErrPasswordBreached = errors.New("password found in breach or policy list")
	// ErrPasswordReused rejects a password whose hash matches a recent
	// history entry.
	ErrPasswordReused = errors.New("password was used recently")
)

// Password and token failure modes are defined next to the code that raises
// them; the aliases below let engine callers match every category from one
// import. errors.Is works across the alias because the values are shared.
var (
	ErrEmptyPassword    = password.ErrEmptyPassword
	ErrUnknownAlgorithm = password.ErrUnknownAlgorithm

	ErrTokenExpired   = token.ErrTokenExpired
	ErrBadIssuer      = token.ErrBadIssuer
	ErrBadAudience    = token.ErrBadAudience
	ErrTokenMalformed = token.ErrTokenMalformed
	ErrWrongTokenType = token.ErrWrongTokenType
	ErrMissingJTI     = token.ErrMissingJTI
	ErrTokenRevoked   = token.ErrTokenRevoked
)
