package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	tok := NewTokens("s3cret", time.Hour)

	raw, err := tok.Issue(42, "MERCHANT")
	require.NoError(t, err)

	c, err := tok.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, int64(42), c.UserID)
	assert.Equal(t, "MERCHANT", c.Role)
	assert.Equal(t, "42", c.Subject)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := NewTokens("one", time.Hour).Issue(1, "CUSTOMER")
	require.NoError(t, err)

	_, err = NewTokens("two", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Expired(t *testing.T) {
	tok := NewTokens("s3cret", time.Minute)
	tok.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	raw, err := tok.Issue(1, "CUSTOMER")
	require.NoError(t, err)

	tok.now = time.Now
	_, err = tok.Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_RejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{UserID: 1, Role: "ADMIN"}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokens("s3cret", time.Hour).Parse(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParse_Garbage(t *testing.T) {
	_, err := NewTokens("s3cret", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
