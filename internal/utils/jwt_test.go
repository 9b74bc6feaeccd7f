package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const (
	testAccessSecret  = "access-test-secret"
	testRefreshSecret = "refresh-test-secret"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	tok, err := IssueAccessToken(testAccessSecret, "user-1", 15)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	sub, err := VerifySubject(tok, testAccessSecret)
	require.NoError(t, err)
	require.Equal(t, "user-1", sub)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tok, err := IssueRefreshToken(testRefreshSecret, "user-2", 7)
	require.NoError(t, err)

	sub, err := VerifySubject(tok, testRefreshSecret)
	require.NoError(t, err)
	require.Equal(t, "user-2", sub)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	tok, err := IssueAccessToken(testAccessSecret, "user-1", 15)
	require.NoError(t, err)

	_, err = VerifySubject(tok, "some-other-secret")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsCrossSecretUse(t *testing.T) {
	// A refresh token must never verify against the access secret.
	tok, err := IssueRefreshToken(testRefreshSecret, "user-1", 7)
	require.NoError(t, err)

	_, err = VerifySubject(tok, testAccessSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tok, err := signSubject(testAccessSecret, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = VerifySubject(tok, testAccessSecret)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsMalformed(t *testing.T) {
	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifySubject(raw, testAccessSecret)
		require.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokensAreUniquePerIssue(t *testing.T) {
	// Two tokens minted back to back for the same subject must differ, or
	// rotation would silently accept the rotated-out value.
	a, err := IssueRefreshToken(testRefreshSecret, "user-1", 7)
	require.NoError(t, err)
	b, err := IssueRefreshToken(testRefreshSecret, "user-1", 7)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}
