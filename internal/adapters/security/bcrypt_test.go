package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherUsesConfiguredCost(t *testing.T) {
	hasher := NewBcryptHasher(DefaultBcryptCost)
	hash, err := hasher.Hash("hunter22")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
	assert.NoError(t, hasher.Compare(hash, "hunter22"))
	assert.Error(t, hasher.Compare(hash, "hunter23"))
}

func TestBcryptHasherFallsBackOnInvalidCost(t *testing.T) {
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).cost)
	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(99).cost)
	assert.Equal(t, bcrypt.MinCost, NewBcryptHasher(bcrypt.MinCost).cost)
}

func TestBcryptHasherSaltsEachHash(t *testing.T) {
	hasher := NewBcryptHasher(bcrypt.MinCost)
	a, err := hasher.Hash("same-password")
	require.NoError(t, err)
	b, err := hasher.Hash("same-password")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
