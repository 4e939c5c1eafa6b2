package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(ttl time.Duration) *JwtIssuer {
	return NewJWTIssuer(JwtConfig{
		Secret: NewSecretString("test_secret"),
		Issuer: "test-issuer",
		TTL:    ttl,
	})
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tk, err := issuer.Issue("user-123")
	require.NoError(t, err)
	require.NotEmpty(t, tk)

	claims, err := issuer.Validate(tk)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.NotEmpty(t, claims.TokenID)
	assert.WithinDuration(t, time.Now(), claims.IssuedAt, time.Minute)
}

func TestJWTIssuer_Expired(t *testing.T) {
	issuer := newTestIssuer(-time.Minute)

	tk, err := issuer.Issue("user-123")
	require.NoError(t, err)

	_, err = issuer.Validate(tk)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_WrongSecret(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tk, err := NewJWTIssuer(JwtConfig{
		Secret: NewSecretString("other_secret"),
		Issuer: "test-issuer",
		TTL:    time.Hour,
	}).Issue("user-123")
	require.NoError(t, err)

	_, err = issuer.Validate(tk)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_Malformed(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	_, err := issuer.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_NoSubject(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(tk)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTIssuer_WrongAlgorithm(t *testing.T) {
	issuer := newTestIssuer(time.Hour)

	tk, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.RegisteredClaims{
		Subject:   "user-123",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("test_secret"))
	require.NoError(t, err)

	_, err = issuer.Validate(tk)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
