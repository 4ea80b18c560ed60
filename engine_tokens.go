package credkit

import (
	"context"

	"github.com/credkit/credkit/token"
)

// IssueAccessToken issues an access token for subject with the given
// extension claims.
func (e *Engine) IssueAccessToken(ctx context.Context, subject string, extra map[string]any) (string, *token.Claims, error) {
	if e == nil || e.tokens == nil {
		return "", nil, ErrEngineNotReady
	}

	tokenStr, claims, err := e.tokens.IssueAccess(subject, extra)
	if err != nil {
		return "", nil, err
	}

	e.metricInc(MetricAccessIssued)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditTokenIssued,
		Subject:   subject,
		TokenID:   claims.ID,
		Success:   true,
		Metadata:  map[string]string{"type": string(token.TypeAccess)},
	})
	return tokenStr, claims, nil
}

// IssueRefreshToken issues a refresh token for subject, linked to
// accessJTI when non-empty.
func (e *Engine) IssueRefreshToken(ctx context.Context, subject, accessJTI string, extra map[string]any) (string, *token.Claims, error) {
	if e == nil || e.tokens == nil {
		return "", nil, ErrEngineNotReady
	}

	tokenStr, claims, err := e.tokens.IssueRefresh(subject, accessJTI, extra)
	if err != nil {
		return "", nil, err
	}

	e.metricInc(MetricRefreshIssued)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditTokenIssued,
		Subject:   subject,
		TokenID:   claims.ID,
		Success:   true,
		Metadata:  map[string]string{"type": string(token.TypeRefresh)},
	})
	return tokenStr, claims, nil
}

// IssueTokenPair issues an access token and a linked refresh token.
func (e *Engine) IssueTokenPair(ctx context.Context, subject string, extra map[string]any) (token.Pair, error) {
	if e == nil || e.tokens == nil {
		return token.Pair{}, ErrEngineNotReady
	}

	pair, err := e.tokens.IssuePair(subject, extra)
	if err != nil {
		return token.Pair{}, err
	}

	e.metricInc(MetricAccessIssued)
	e.metricInc(MetricRefreshIssued)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditTokenIssued,
		Subject:   subject,
		TokenID:   pair.AccessClaims.ID,
		Success:   true,
		Metadata:  map[string]string{"type": "pair"},
	})
	return pair, nil
}

// VerifyToken validates a token of the expected type. Failure modes are
// individually distinguishable; see the token package sentinels.
func (e *Engine) VerifyToken(ctx context.Context, tokenStr string, expected token.Type) (*token.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Verify(ctx, tokenStr, expected)
	if err != nil {
		e.metricInc(MetricTokenVerifyFailure)
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditTokenVerifyFailed,
			Error:     err.Error(),
		})
		return nil, err
	}

	e.metricInc(MetricTokenVerifySuccess)
	return claims, nil
}

// InspectToken reads the claims of a token without the expiry check. Meant
// for examining already-expired tokens; all other validation still applies.
func (e *Engine) InspectToken(ctx context.Context, tokenStr string, expected token.Type) (*token.Claims, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}
	return e.tokens.Inspect(ctx, tokenStr, expected)
}

// RefreshTokens exchanges a refresh token for a new access token, rotating
// the refresh token when less than half its lifetime remains.
func (e *Engine) RefreshTokens(ctx context.Context, refreshToken string, extra map[string]any) (token.Pair, error) {
	if e == nil || e.tokens == nil {
		return token.Pair{}, ErrEngineNotReady
	}

	pair, err := e.tokens.Refresh(ctx, refreshToken, extra)
	if err != nil {
		e.metricInc(MetricTokenVerifyFailure)
		return token.Pair{}, err
	}

	e.metricInc(MetricAccessIssued)
	if pair.RefreshRotated {
		e.metricInc(MetricRefreshRotated)
		e.metricInc(MetricRefreshIssued)
	} else {
		e.metricInc(MetricRefreshPreserved)
	}
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditTokenRefreshed,
		Subject:   pair.AccessClaims.Subject,
		TokenID:   pair.AccessClaims.ID,
		Success:   true,
		Metadata:  map[string]string{"rotated": boolString(pair.RefreshRotated)},
	})
	return pair, nil
}

// RevokeToken records jti (and, with revokeFamily, its family marker) as
// revoked and returns the recorded id list.
func (e *Engine) RevokeToken(ctx context.Context, jti string, revokeFamily bool) ([]string, error) {
	if e == nil || e.tokens == nil {
		return nil, ErrEngineNotReady
	}

	ids, err := e.tokens.Revoke(ctx, jti, revokeFamily)
	if err != nil {
		return nil, err
	}

	for range ids {
		e.metricInc(MetricTokenRevoked)
	}
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditTokenRevoked,
		TokenID:   jti,
		Success:   true,
		Metadata:  map[string]string{"family": boolString(revokeFamily)},
	})
	return ids, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
