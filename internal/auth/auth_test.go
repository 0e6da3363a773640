package auth

import (
	"context"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenService_IssueParse(t *testing.T) {
	s := NewTokenService(testSecret, "estateadmin", time.Hour)
	in := Principal{UserID: "42", Email: "anna@example.pl", Name: "Anna Nowak", Role: RoleManager}

	raw, err := s.Issue(in)
	require.NoError(t, err)

	got, err := s.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "42", got.UserID)
	assert.Equal(t, RoleManager, got.Role)
	assert.Equal(t, "Anna Nowak", got.Name)
	assert.NotEmpty(t, got.SessionID)
	assert.False(t, got.TwoFactorEnabled)
}

func TestTokenService_Rejects(t *testing.T) {
	s := NewTokenService(testSecret, "estateadmin", time.Hour)
	valid, err := s.Issue(Principal{UserID: "1", Role: RoleOwner})
	require.NoError(t, err)

	expired := NewTokenService(testSecret, "estateadmin", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue(Principal{UserID: "1", Role: RoleOwner})
	require.NoError(t, err)

	otherKey, err := NewTokenService("another-secret-another-secret-xx", "estateadmin", time.Hour).
		Issue(Principal{UserID: "1", Role: RoleOwner})
	require.NoError(t, err)

	otherIssuer, err := NewTokenService(testSecret, "someone-else", time.Hour).
		Issue(Principal{UserID: "1", Role: RoleOwner})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"garbage":      "not-a-token",
		"tampered":     valid + "x",
		"expired":      old,
		"other key":    otherKey,
		"other issuer": otherIssuer,
		"alg none":     unsigned,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Parse(raw)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestTokenService_IssueRequiresRole(t *testing.T) {
	s := NewTokenService(testSecret, "estateadmin", time.Hour)
	_, err := s.Issue(Principal{UserID: "1", Role: "janitor"})
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "7", Role: RoleAdmin})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, p.HasRole(RoleManager, RoleAdmin))
	assert.False(t, p.HasRole(RoleOwner))
}
