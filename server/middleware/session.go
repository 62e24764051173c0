package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fittrack/auth/authctx"
	"github.com/kbukum/fittrack/auth/session"
	apperrors "github.com/kbukum/fittrack/errors"
	"github.com/kbukum/fittrack/logger"
	"github.com/kbukum/fittrack/observability"
)

// Verifier resolves a raw bearer token to its claims.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*session.Claims, error)
}

// IdentityKey is the gin context key under which Session stores the
// session.Identity.
const IdentityKey = "session.identity"

// Session authenticates requests carrying "Authorization: Bearer <token>".
// Rejected requests are aborted with the error envelope: 401 for missing,
// invalid or revoked tokens, 503 when revocation cannot be checked.
func Session(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))

		claims, err := v.Verify(c.Request.Context(), raw)
		if err != nil {
			abortWithError(c, err)
			return
		}

		id := session.NewIdentity(raw, claims)
		ctx := authctx.Set(c.Request.Context(), id)
		ctx = logger.ContextWithUserID(ctx, id.SubjectID)
		observability.RequestFromContext(ctx).SetUser(id.SubjectID)
		c.Request = c.Request.WithContext(ctx)
		c.Set(IdentityKey, id)
		c.Next()
	}
}

// CurrentIdentity returns the identity Session stored on c, falling back to
// the request context.
func CurrentIdentity(c *gin.Context) (session.Identity, bool) {
	if v, ok := c.Get(IdentityKey); ok {
		if id, ok := v.(session.Identity); ok {
			return id, true
		}
	}
	return authctx.Get[session.Identity](c.Request.Context())
}

// bearerToken returns the token of a Bearer authorization header, or ""
// for a missing header or another scheme.
func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func abortWithError(c *gin.Context, err error) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		appErr = apperrors.Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	c.AbortWithStatusJSON(status, appErr.ToResponse())
}
