package managers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestCredentialManager_RoundTrip(t *testing.T) {
	cm := NewCredentialManager()

	for _, password := range []string{"Secret1!", "a", "pässwörd with spaces"} {
		hash, err := cm.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)
		assert.True(t, cm.Verify(password, hash), password)
		assert.False(t, cm.Verify(password+"x", hash), password)
	}
}

func TestCredentialManager_Cost(t *testing.T) {
	hash, err := NewCredentialManager().Hash("Secret1!")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)
}

func TestCredentialManager_SaltedHashesDiffer(t *testing.T) {
	cm := NewCredentialManager()
	first, err := cm.Hash("Secret1!")
	require.NoError(t, err)
	second, err := cm.Hash("Secret1!")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestCredentialManager_MissingOrBrokenHash(t *testing.T) {
	cm := NewCredentialManager()

	assert.False(t, cm.Verify("Secret1!", ""))
	assert.False(t, cm.Verify("Secret1!", "not-a-bcrypt-hash"))
}

func TestCredentialManager_MissingHashStillRunsBcrypt(t *testing.T) {
	cost, err := bcrypt.Cost(placeholderHash())
	require.NoError(t, err)
	assert.Equal(t, PasswordCost, cost)

	cm := NewCredentialManager()
	hash, err := cm.Hash("Secret1!")
	require.NoError(t, err)

	// Both paths pay for one comparison at the stored cost.
	start := time.Now()
	assert.False(t, cm.Verify("wrong", hash))
	wrongPassword := time.Since(start)

	start = time.Now()
	assert.False(t, cm.Verify("Secret1!", ""))
	unknownUser := time.Since(start)

	assert.Greater(t, unknownUser, wrongPassword/4)
}

func TestCredentialManager_TooLong(t *testing.T) {
	_, err := NewCredentialManager().Hash(strings.Repeat("a", 73))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
