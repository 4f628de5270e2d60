package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, password := range []string{"correct", "pässwörd", "with spaces and symbols !@#"} {
		hash, err := h.Hash(password)
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)

		ok, err := h.Verify(password, hash)
		require.NoError(t, err)
		assert.True(t, ok, "password %q must verify", password)

		ok, err = h.Verify(password+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, "wrong password must not verify")
	}
}

func TestPasswordHasher_SaltsEachHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_UsesConfiguredCost(t *testing.T) {
	hash, err := NewPasswordHasher(bcrypt.MinCost+1).Hash("pw")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost+1, cost)
}

func TestNewPasswordHasher_OutOfRangeCostFallsBack(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewPasswordHasher(99).cost)
}

func TestPasswordHasher_VerifyCorruptHash(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	for _, hash := range []string{"", "plaintext", "$9$10$garbagegarbagegarbagegarbagegarbagegarbagegarbagega"} {
		ok, err := h.Verify("pw", hash)
		assert.False(t, ok)

		var he *HashError
		assert.ErrorAs(t, err, &he, "hash %q", hash)
	}
}
