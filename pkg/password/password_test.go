package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewBcryptHasher(MinCost)

	hash, err := h.Hash("password")
	require.NoError(t, err)
	assert.NotEqual(t, "password", hash)

	assert.True(t, h.Verify("password", hash))
	assert.False(t, h.Verify("Password", hash))
	assert.False(t, h.Verify("password", "not-a-hash"))
}

func TestHashIsSalted(t *testing.T) {
	h := NewBcryptHasher(MinCost)
	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCostFloor(t *testing.T) {
	h := NewBcryptHasher(4)
	assert.Equal(t, MinCost, h.Cost())

	hash, err := h.Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, MinCost, cost)
}
