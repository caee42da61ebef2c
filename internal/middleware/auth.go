package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/charlesng35/accountd/internal/auth"
	"github.com/charlesng35/accountd/pkg/errors"
	"github.com/charlesng35/accountd/pkg/metrics"
	"github.com/charlesng35/accountd/pkg/response"
)

const (
	CtxClaimsKey    = "authClaims"
	CtxUserIDKey    = "userID"
	CtxUserEmailKey = "userEmail"
	CtxTokenKey     = "authToken"
)

// TokenVerifier validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*iauth.Claims, error)
}

// RevocationChecker reports signed-out tokens.
type RevocationChecker interface {
	IsRevoked(token string) bool
}

// BearerToken extracts the credential from an "Authorization: Bearer <t>"
// header value. The scheme is matched case-insensitively.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth admits requests carrying a valid, unrevoked bearer token. The
// revocation check runs before signature verification.
func Auth(jwt TokenVerifier, revoked RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			metrics.GateDecisions.WithLabelValues("missing").Inc()
			response.Abort(c, errors.ErrMissingToken)
			return
		}

		if revoked != nil && revoked.IsRevoked(token) {
			metrics.GateDecisions.WithLabelValues("revoked").Inc()
			response.Abort(c, errors.ErrRevokedToken)
			return
		}

		claims, err := jwt.Verify(token)
		if err != nil {
			metrics.GateDecisions.WithLabelValues("invalid").Inc()
			response.Abort(c, errors.ErrInvalidToken.WithInternal(err))
			return
		}

		metrics.GateDecisions.WithLabelValues("allow").Inc()

		// Propagate identity into request context
		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserEmailKey, claims.Email)
		c.Set(CtxTokenKey, token)

		c.Next()
	}
}

// ClaimsFromContext returns the claims stored by Auth, if any.
func ClaimsFromContext(c *gin.Context) (*iauth.Claims, bool) {
	v, ok := c.Get(CtxClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*iauth.Claims)
	return claims, ok
}
