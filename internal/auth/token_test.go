package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIssuer(t *testing.T, secret string) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(secret, time.Hour)
	require.NoError(t, err)
	return issuer
}

func tokenKind(t *testing.T, err error) TokenErrorKind {
	t.Helper()
	var te *TokenError
	require.True(t, errors.As(err, &te), "expected *TokenError, got %v", err)
	return te.Kind
}

func TestTokenIssuer_IssueVerify(t *testing.T) {
	issuer := newIssuer(t, "secret")

	token, err := issuer.Issue("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	username, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", username)
}

func TestTokenIssuer_ClaimsCarryOneHourWindow(t *testing.T) {
	issuer := newIssuer(t, "secret")
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return fixed }

	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.True(t, claims.IssuedAt.Time.Equal(fixed))
	assert.True(t, claims.ExpiresAt.Time.Equal(fixed.Add(time.Hour)))
}

func TestTokenIssuer_Expired(t *testing.T) {
	issuer := newIssuer(t, "secret")
	issuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	issuer.now = time.Now
	_, err = issuer.Verify(token)

	assert.Equal(t, TokenExpired, tokenKind(t, err))
}

func TestTokenIssuer_NoLeewayAtExpiry(t *testing.T) {
	issuer := newIssuer(t, "secret")
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return start }
	token, err := issuer.Issue("alice")
	require.NoError(t, err)

	issuer.now = func() time.Time { return start.Add(time.Hour + time.Second) }
	_, err = issuer.Verify(token)

	assert.Equal(t, TokenExpired, tokenKind(t, err))
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	token, err := newIssuer(t, "right").Issue("alice")
	require.NoError(t, err)

	_, err = newIssuer(t, "wrong").Verify(token)

	assert.Equal(t, TokenMalformed, tokenKind(t, err))
}

func TestTokenIssuer_Garbage(t *testing.T) {
	issuer := newIssuer(t, "secret")

	for _, token := range []string{"", "not.a.jwt", "abc"} {
		_, err := issuer.Verify(token)
		assert.Equal(t, TokenMalformed, tokenKind(t, err), "token %q", token)
	}
}

func TestTokenIssuer_RejectsOtherAlgorithms(t *testing.T) {
	issuer := newIssuer(t, "secret")
	claims := Claims{
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = issuer.Verify(token)

	assert.Equal(t, TokenMalformed, tokenKind(t, err))
}

func TestTokenIssuer_RequiresUsername(t *testing.T) {
	issuer := newIssuer(t, "secret")
	token, err := issuer.Issue("")
	require.NoError(t, err)

	_, err = issuer.Verify(token)

	assert.Equal(t, TokenMalformed, tokenKind(t, err))
}

func TestNewTokenIssuer_RequiresSecret(t *testing.T) {
	_, err := NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}
