package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigner_RoundTrip(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, err := signer.Sign("p-123")
	require.NoError(t, err)

	id, err := signer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "p-123", id)
}

func TestSigner_ProfileIDIsStandardSubject(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	token, err := signer.Sign("p-123")
	require.NoError(t, err)

	claims := &jwt.RegisteredClaims{}
	_, err = jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	require.NoError(t, err)

	subject, err := claims.GetSubject()
	require.NoError(t, err)
	assert.Equal(t, "p-123", subject)
}

func TestSigner_RejectsMissingSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Verify(token)
	assert.Error(t, err)
}

func TestSigner_RejectsForeignSecret(t *testing.T) {
	token, err := NewSigner("other", time.Hour).Sign("p-123")
	require.NoError(t, err)

	_, err = NewSigner("secret", time.Hour).Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestSigner_RejectsExpired(t *testing.T) {
	signer := NewSigner("secret", time.Minute)
	issued := time.Now().Add(-time.Hour)
	signer.now = func() time.Time { return issued }

	token, err := signer.Sign("p-123")
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.Verify(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestSigner_RejectsGarbage(t *testing.T) {
	signer := NewSigner("secret", time.Hour)

	_, err := signer.Verify("not-a-token")
	assert.Error(t, err)

	_, err = signer.Sign("")
	assert.Error(t, err)
}
