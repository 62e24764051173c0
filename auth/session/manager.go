package session

import (
	"context"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/fittrack/auth/jwt"
	"github.com/kbukum/fittrack/auth/revocation"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/observability"
)

// Outcome labels recorded on spans and metrics.
const (
	OutcomeValid       = "valid"
	OutcomeNoToken     = "no_token"
	OutcomeRevoked     = "revoked"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "store_unavailable"
	OutcomeRevokedNow  = "revoked_now"
)

// Manager issues, verifies and revokes session tokens.
type Manager struct {
	tokens      *jwt.Service[*Claims]
	revocations revocation.Registry
	log         *logger.Logger
	metrics     *observability.Metrics
}

// NewManager builds a Manager. A missing secret in cfg is an error.
func NewManager(cfg jwt.Config, revocations revocation.Registry, log *logger.Logger, opts ...jwt.Option) (*Manager, error) {
	tokens, err := jwt.NewService(cfg, func() *Claims { return &Claims{} }, opts...)
	if err != nil {
		return nil, err
	}
	return &Manager{
		tokens:      tokens,
		revocations: revocations,
		log:         log.WithComponent("session"),
		metrics:     observability.DefaultMetrics(),
	}, nil
}

// TTL returns the validity window of issued tokens.
func (m *Manager) TTL() time.Duration { return m.tokens.TTL() }

// Issue signs a token for the given subject. Issuing twice within the same
// second for the same subject yields identical tokens.
func (m *Manager) Issue(subjectID, subjectEmail string) (string, *Claims, error) {
	now := m.tokens.Now().Truncate(time.Second)
	claims := &Claims{
		Subject:   subjectID,
		Email:     subjectEmail,
		IssuedAt:  gojwt.NewNumericDate(now),
		ExpiresAt: gojwt.NewNumericDate(now.Add(m.tokens.TTL())),
	}
	token, err := m.tokens.Sign(claims)
	if err != nil {
		return "", nil, apperrors.Internal(err)
	}
	return token, claims, nil
}

// Verify resolves raw to its claims. The revocation registry is consulted
// before anything else is done with the token. Errors are NoToken,
// TokenRevoked, InvalidToken or StoreUnavailable.
func (m *Manager) Verify(ctx context.Context, raw string) (*Claims, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanSessionVerify)

	claims, outcome, err := m.verify(ctx, raw)

	if claims != nil {
		span.SetAttributes(attribute.String(observability.AttrUserID, claims.Subject))
	}
	observability.EndSpan(span, outcome, err)
	m.metrics.RecordOperation(ctx, observability.SpanSessionVerify, outcome, time.Since(start))
	if err != nil {
		m.metrics.RecordError(ctx, errorCode(err), "session")
	}
	return claims, err
}

func (m *Manager) verify(ctx context.Context, raw string) (*Claims, string, error) {
	if raw == "" {
		return nil, OutcomeNoToken, apperrors.NoToken()
	}

	revoked, err := m.revocations.IsRevoked(ctx, raw)
	if err != nil {
		m.log.WithContext(ctx).Error("Revocation lookup failed", logger.ErrorFields("session.verify", err))
		return nil, OutcomeUnavailable, apperrors.StoreUnavailable(err)
	}
	if revoked {
		return nil, OutcomeRevoked, apperrors.TokenRevoked()
	}

	claims, err := m.tokens.Parse(raw)
	if err != nil {
		m.log.WithContext(ctx).Debug("Token rejected", map[string]interface{}{
			logger.FieldReason: err.Error(),
		})
		return nil, OutcomeInvalid, apperrors.InvalidToken().WithCause(err)
	}
	return claims, OutcomeValid, nil
}

// Revoke adds the token of id to the revocation registry until its own
// expiry. Revoking twice is not an error.
func (m *Manager) Revoke(ctx context.Context, id Identity) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, observability.SpanSessionRevoke)
	span.SetAttributes(attribute.String(observability.AttrUserID, id.SubjectID))

	outcome := OutcomeRevokedNow
	err := m.revocations.Revoke(ctx, id.Token, id.ExpiresAt)
	if err != nil {
		outcome = OutcomeUnavailable
		m.log.WithContext(ctx).Error("Revocation write failed", logger.ErrorFields("session.revoke", err))
		err = apperrors.StoreUnavailable(err)
		m.metrics.RecordError(ctx, string(apperrors.ErrCodeStoreUnavailable), "session")
	}

	observability.EndSpan(span, outcome, err)
	m.metrics.RecordOperation(ctx, observability.SpanSessionRevoke, outcome, time.Since(start))
	return err
}

func errorCode(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return string(appErr.Code)
	}
	return string(apperrors.ErrCodeInternal)
}
