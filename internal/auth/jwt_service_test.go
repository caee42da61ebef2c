package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewJWTServiceRequiresSecret(t *testing.T) {
	_, err := NewJWTService(JWTConfig{})
	require.Error(t, err)
	require.EqualError(t, err, "jwt: secret must be provided")
}

func TestNewJWTServiceDefaultsToOneYear(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s"})
	require.NoError(t, err)
	require.Equal(t, DefaultTokenTTL, svc.TTL())
}

func TestIssueAndVerify(t *testing.T) {
	current := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "super-secret", Clock: now})
	require.NoError(t, err)

	token, exp, err := svc.Issue(Identity{ID: "42", Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.True(t, exp.Equal(current.Add(DefaultTokenTTL)))

	claims, err := svc.Verify(token)
	require.NoError(t, err)

	require.Equal(t, Identity{ID: "42", Email: "a@x.com"}, claims.Identity())
	require.NotEmpty(t, claims.ID)
	require.True(t, claims.IssuedAt.Time.Equal(current))
	require.True(t, claims.ExpiresAtTime().Equal(exp))
}

func TestIssueSameSecondYieldsDistinctTokens(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc, err := NewJWTService(JWTConfig{Secret: "s", Clock: func() time.Time { return fixed }})
	require.NoError(t, err)

	first, _, err := svc.Issue(Identity{ID: "1", Email: "a@x.com"})
	require.NoError(t, err)
	second, _, err := svc.Issue(Identity{ID: "1", Email: "a@x.com"})
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestIssueRequiresID(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "s"})
	require.NoError(t, err)
	_, _, err = svc.Issue(Identity{Email: "a@x.com"})
	require.Error(t, err)
}

func TestVerifyInvalidSignature(t *testing.T) {
	now := func() time.Time { return time.Date(2024, 1, 1, 13, 0, 0, 0, time.UTC) }

	issuer, err := NewJWTService(JWTConfig{Secret: "issuer-secret", Clock: now})
	require.NoError(t, err)

	token, _, err := issuer.Issue(Identity{ID: "1", Email: "a@x.com"})
	require.NoError(t, err)

	verifier, err := NewJWTService(JWTConfig{Secret: "other-secret", Clock: now})
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidToken))
	require.True(t, errors.Is(err, jwt.ErrTokenSignatureInvalid))
}

func TestVerifyExpired(t *testing.T) {
	current := time.Date(2024, 1, 1, 14, 0, 0, 0, time.UTC)
	now := func() time.Time { return current }

	svc, err := NewJWTService(JWTConfig{Secret: "secret", TokenTTL: time.Minute, Clock: now})
	require.NoError(t, err)

	token, _, err := svc.Issue(Identity{ID: "1", Email: "a@x.com"})
	require.NoError(t, err)

	// Move time forward beyond expiry.
	current = current.Add(2 * time.Minute)

	_, err = svc.Verify(token)
	require.Error(t, err)
	require.True(t, errors.Is(err, jwt.ErrTokenExpired))
	require.True(t, errors.Is(err, ErrInvalidToken))
}

func TestVerifyRejectsOtherAlgorithms(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	claims := &Claims{
		UserID: "1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)
	_, err = svc.Verify(hs512)
	require.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Verify(none)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	for _, token := range []string{"", "abc", "a.b.c"} {
		_, err := svc.Verify(token)
		require.ErrorIs(t, err, ErrInvalidToken, "token %q", token)
	}
}

func TestVerifyRequiresIDClaim(t *testing.T) {
	svc, err := NewJWTService(JWTConfig{Secret: "secret"})
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Email: "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}
