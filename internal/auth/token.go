package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers every validation failure: malformed structure, bad
// signature, wrong issuer or audience, expiry. Callers are not told which
// check failed.
var ErrInvalidToken = errors.New("auth: invalid token")

// DefaultTokenTTL is the credential lifetime applied when none is configured.
const DefaultTokenTTL = 30 * time.Minute

// Claims is the claim set embedded in issued tokens: one subject plus zero
// or more role strings.
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the verified caller identity extracted from a token.
type Identity struct {
	UserID string
	Roles  []string
}

// TokenService issues and validates self-contained bearer tokens signed
// with HMAC-SHA256 over a pre-shared secret.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service. Issuer and audience are fixed,
// externally configured strings; ttl falls back to DefaultTokenTTL when
// non-positive.
func NewTokenService(secret, issuer, audience string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue signs a token for the given subject carrying one role claim per
// role string. An empty role list is legal.
func (ts *TokenService) Issue(userID string, roles []string) (string, error) {
	now := ts.now()
	claims := Claims{
		Roles: roles,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    ts.issuer,
			Audience:  jwt.ClaimStrings{ts.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(ts.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate checks signature integrity, issuer, audience and expiry, in that
// order, and returns the identity the token carries.
func (ts *TokenService) Validate(tokenString string) (*Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, ErrInvalidToken
			}
			return ts.secret, nil
		},
		jwt.WithIssuer(ts.issuer),
		jwt.WithAudience(ts.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return ts.now() }),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.Subject, Roles: claims.Roles}, nil
}
