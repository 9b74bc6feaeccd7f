package utils // package utils provides helper functions for token creation and verification

import (
	"errors" // sentinel error for all verification failures
	"time"   // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating signed tokens
	"github.com/google/uuid"       // unique token ids
)

// ErrInvalidToken is returned by VerifySubject for every verification
// failure: bad signature, elapsed expiry, or a malformed payload.  Callers
// never learn which check failed.
var ErrInvalidToken = errors.New("invalid token")

// IssueAccessToken builds and signs a short-lived HS256 JWT for a user.  It
// takes the access signing secret, the user id, and a TTL in minutes.  The
// JWT includes standard claims: subject (sub), expiration (exp) and issued
// at (iat).  Access tokens are stateless; nothing is persisted.
func IssueAccessToken(secret, subject string, ttlMin int) (string, error) {
	return signSubject(secret, subject, time.Duration(ttlMin)*time.Minute)
}

// IssueRefreshToken builds and signs a long-lived HS256 JWT with the same
// payload shape as an access token but its own secret and a TTL in days.
// The returned value is additionally persisted on the user record by the
// session manager; only that stored instance is accepted on refresh.
func IssueRefreshToken(secret, subject string, ttlDays int) (string, error) {
	return signSubject(secret, subject, time.Duration(ttlDays)*24*time.Hour)
}

// signSubject signs a {sub, iat, exp, jti} payload with the given secret.
// Both token kinds share this encoding; only secret and lifetime differ.
// The jti claim makes two tokens minted within the same second distinct,
// which rotation depends on.
func signSubject(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
		"jti": uuid.NewString(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(secret))
}

// VerifySubject parses and validates a signed token against the given
// secret and returns the subject id it carries.  The signing method must be
// HMAC; tokens signed with any other algorithm are rejected.  Signature and
// expiry checks are performed by the jwt library during Parse.  Any failure
// collapses into ErrInvalidToken.
func VerifySubject(raw, secret string) (string, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		// Type assert the signing method to HMAC; reject others.
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", ErrInvalidToken
	}
	return sub, nil
}
