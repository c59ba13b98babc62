package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ordersystem/internal/auth"
	"ordersystem/internal/util"

	"github.com/gin-gonic/gin"
)

// Credential extraction failures. Distinct from auth.ErrInvalidToken, which
// means a token was present but failed validation.
var (
	ErrMissingCredential   = errors.New("api: authorization header is missing")
	ErrMalformedCredential = errors.New("api: authorization header has no token segment")
)

const identityContextKey = "identity"

// TokenValidator verifies a bearer token and extracts the caller identity.
// Implemented by *auth.TokenService.
type TokenValidator interface {
	Validate(token string) (*auth.Identity, error)
}

// AuthRequired is the single chokepoint through which authenticated
// handlers obtain the caller identity: it extracts the bearer credential,
// delegates to the token validator and stores the identity in the request
// context. Every owner-scoped read or write runs behind it.
func AuthRequired(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := IdentityFromRequest(tokens, c.Request)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				util.TokenValidationFailedTotal.Inc()
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.Set(identityContextKey, identity)
		c.Next()
	}
}

// IdentityFromRequest extracts the bearer token from the Authorization
// header and validates it. A missing header and a header without a token
// segment fail before the validator is consulted; everything else is the
// validator's verdict.
func IdentityFromRequest(tokens TokenValidator, r *http.Request) (*auth.Identity, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingCredential
	}

	// "<scheme> <opaque-token>"; only the token segment reaches the
	// validator. An empty segment is the validator's problem.
	parts := strings.SplitN(header, " ", 2)
	if len(parts) < 2 {
		return nil, ErrMalformedCredential
	}

	return tokens.Validate(parts[1])
}

// RequireRoles allows the request through when the caller holds at least
// one of the given roles. Role strings are exact, case-sensitive matches.
func RequireRoles(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := CallerIdentity(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": ErrMissingCredential.Error(),
			})
			return
		}

		for _, have := range identity.Roles {
			for _, want := range roles {
				if have == want {
					c.Next()
					return
				}
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "insufficient role",
		})
	}
}

// CallerIdentity returns the identity stored by AuthRequired, or nil
func CallerIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityContextKey)
	if !ok {
		return nil
	}
	identity, ok := v.(*auth.Identity)
	if !ok {
		return nil
	}
	return identity
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
