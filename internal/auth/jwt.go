// Package auth provides token issuance/verification, password hashing, and
// the authentication middleware that gates protected routes.
//
// Tokens are stateless HS256 JWTs: the signed payload carries the identity ID
// and an expiry, so verification needs no session table and no store lookup.
// The flip side is that there is no revocation — a token a client discarded
// at logout stays verifiable until it expires. That is a documented property
// of this scheme, not a bug to patch around here.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "friendcircle"

// DefaultTokenTTL is the validity window for issued tokens.
const DefaultTokenTTL = time.Hour

// Sentinel errors returned by Validate, used by the middleware to keep
// "no token" and "bad token" as distinct rejections.
var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrTokenInvalid = errors.New("auth: invalid token")
)

// TokenService signs and verifies identity tokens.
//
// The HMAC secret is injected at construction — never read from ambient
// state — so separate instances (production, tests) can hold distinct
// secrets. It must never appear in source or logs.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime. A zero ttl falls back to DefaultTokenTTL. Secrets shorter than
// 16 characters are rejected outright: an HMAC key that short is guessable.
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims embeds jwt.RegisteredClaims; the identity ID travels in "sub".
type claims struct {
	jwt.RegisteredClaims
}

// Generate creates and signs a token for the given identity ID, valid for
// the service's configured TTL.
func (s *TokenService) Generate(userID string) (string, error) {
	return s.GenerateWithDuration(userID, s.ttl)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used by tests to mint already-expired or long-lived tokens.
func (s *TokenService) GenerateWithDuration(userID string, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a token string and returns the identity ID it
// binds to. Nothing in the token is trusted until the signature checks out;
// the algorithm is pinned to HS256 so a token claiming "none" or an RSA
// variant is rejected before key lookup.
func (s *TokenService) Validate(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", ErrTokenInvalid
	}
	if c.Subject == "" {
		return "", fmt.Errorf("%w: no subject", ErrTokenInvalid)
	}

	return c.Subject, nil
}
