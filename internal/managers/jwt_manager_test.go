package managers

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTManager(t *testing.T, secret string, now time.Time) *JWTManager {
	t.Helper()
	jm, err := NewJWTManager(secret, "HS256", time.Hour)
	require.NoError(t, err)
	jm.now = func() time.Time { return now }
	return jm
}

func sessionClaims() SessionClaims {
	activated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return SessionClaims{
		Username:         "alice",
		ActivatedAt:      &activated,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "9b2c6f7e-1f3a-4f43-8f57-3c2a1d0e9b10"},
	}
}

func TestJWTManager_RoundTrip(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	jm := newTestJWTManager(t, "secret", now)

	token, issued, err := jm.Issue(sessionClaims())
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), issued.ExpiresAt.Time)
	assert.NotEmpty(t, issued.ID)

	jm.now = func() time.Time { return now.Add(59 * time.Minute) }
	got, err := jm.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, issued.Subject, got.Subject)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, issued.ActivatedAt.Equal(*got.ActivatedAt))
	assert.Equal(t, issued.ExpiresAt.Unix(), got.ExpiresAt.Unix())
	assert.Equal(t, issued.ID, got.ID)
}

func TestJWTManager_PendingAccountHasNullActivation(t *testing.T) {
	jm := newTestJWTManager(t, "secret", time.Now())
	claims := sessionClaims()
	claims.ActivatedAt = nil

	token, _, err := jm.Issue(claims)
	require.NoError(t, err)

	got, err := jm.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, got.ActivatedAt)
}

func TestJWTManager_Expired(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	jm := newTestJWTManager(t, "secret", now)

	token, _, err := jm.Issue(sessionClaims())
	require.NoError(t, err)

	jm.now = func() time.Time { return now.Add(time.Hour + time.Second) }
	_, err = jm.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTManager_WrongSecret(t *testing.T) {
	now := time.Now()
	token, _, err := newTestJWTManager(t, "right-secret", now).Issue(sessionClaims())
	require.NoError(t, err)

	_, err = newTestJWTManager(t, "wrong-secret", now).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Tampered(t *testing.T) {
	jm := newTestJWTManager(t, "secret", time.Now())
	token, _, err := jm.Issue(sessionClaims())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	other, _, err := jm.Issue(SessionClaims{Username: "mallory", RegisteredClaims: jwt.RegisteredClaims{Subject: "x"}})
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = jm.Verify(strings.Join(parts, "."))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTManager_Malformed(t *testing.T) {
	jm := newTestJWTManager(t, "secret", time.Now())

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		_, err := jm.Verify(token)
		assert.ErrorIs(t, err, ErrInvalidToken, token)
	}
}

func TestJWTManager_RejectsOtherAlgorithm(t *testing.T) {
	now := time.Now()
	jm384, err := NewJWTManager("secret", "HS384", time.Hour)
	require.NoError(t, err)
	token, _, err := jm384.Issue(sessionClaims())
	require.NoError(t, err)

	_, err = newTestJWTManager(t, "secret", now).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManager_Config(t *testing.T) {
	_, err := NewJWTManager("", "HS256", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTManager("secret", "RS256", time.Hour)
	assert.ErrorContains(t, err, "unsupported jwt algorithm")

	_, err = NewJWTManager("secret", "HS256", 0)
	assert.Error(t, err)

	jm, err := NewJWTManager("secret", "HS512", 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, jm.TTL())
}
