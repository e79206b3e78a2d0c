package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery staple", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	assert.True(t, h.Verify("correct horse battery staple", hash))
	assert.False(t, h.Verify("wrong password", hash))
}

func TestVerify_GarbageHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	assert.False(t, h.Verify("anything", "not-a-bcrypt-hash"))
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("secret1")
	require.NoError(t, err)
	second, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewHasher_CostOutOfRangeFallsBack(t *testing.T) {
	assert.Equal(t, DefaultCost, NewHasher(0).cost)
	assert.Equal(t, DefaultCost, NewHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewHasher(bcrypt.MinCost).cost)
}
