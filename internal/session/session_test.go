package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	m := NewManager(testSecret, 24*time.Hour)
	tok, err := m.Issue("user-1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), tok.ExpiresAt, 5*time.Second)

	sub, err := m.Parse(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestParseFailures(t *testing.T) {
	t.Parallel()

	m := NewManager(testSecret, time.Hour)
	valid, err := m.Issue("user-1")
	require.NoError(t, err)

	expired := NewManager(testSecret, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("user-1")
	require.NoError(t, err)

	other, err := NewManager("another-secret-key-123456789012345678901234", time.Hour).Issue("user-1")
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    "someone-else",
		Audience:  jwt.ClaimStrings{Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
	foreignSigned, err := foreign.SignedString([]byte(testSecret))
	require.NoError(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:  "user-1",
		Issuer:   Issuer,
		Audience: jwt.ClaimStrings{Audience},
	})
	noExpSigned, err := noExp.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"missing", "", ErrMissingToken},
		{"garbage", "not-a-jwt", ErrInvalidToken},
		{"expired", old.Value, ErrInvalidToken},
		{"wrong secret", other.Value, ErrInvalidToken},
		{"wrong issuer", foreignSigned, ErrInvalidToken},
		{"no expiry", noExpSigned, ErrInvalidToken},
		{"tampered", valid.Value + "x", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Parse(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestIssueWithoutSecret(t *testing.T) {
	t.Parallel()

	_, err := NewManager("", time.Hour).Issue("user-1")
	assert.Error(t, err)
}
