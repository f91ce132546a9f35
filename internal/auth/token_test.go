package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

func testAccount() *Account {
	return &Account{
		ID:       7,
		Username: "maria",
		Roles:    []string{"ROLE_USER"},
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, tokenID, expiresAt, err := tm.Issue(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, tokenID)
	require.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims, err := tm.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "maria", claims.Username)
	require.Equal(t, []string{"ROLE_USER"}, claims.Roles)
	require.Equal(t, tokenID, claims.ID)
	require.Equal(t, "7", claims.Subject)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	issued := time.Now().UTC()
	tm.now = func() time.Time { return issued }

	token, _, _, err := tm.Issue(testAccount())
	require.NoError(t, err)

	tm.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = tm.Verify(token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer := NewTokenManager("secret-a", time.Hour)
	verifier := NewTokenManager("secret-b", time.Hour)

	token, _, _, err := issuer.Issue(testAccount())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	_, err := tm.Verify("not.a.token")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}
