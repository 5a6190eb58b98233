package security_test

import (
	"testing"

	"github.com/Rrens/article-hub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	hash, err := hasher.Hash("abcd1234")
	require.NoError(t, err)
	assert.NotEqual(t, "abcd1234", hash)

	assert.True(t, hasher.Verify("abcd1234", hash))
	assert.False(t, hasher.Verify("abcd12345", hash))
	assert.False(t, hasher.Verify("", hash))
}

func TestPasswordHasher_Salted(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("abcd1234")
	require.NoError(t, err)
	second, err := hasher.Hash("abcd1234")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestPasswordHasher_MalformedHash(t *testing.T) {
	hasher := security.NewPasswordHasher(bcrypt.MinCost)

	assert.False(t, hasher.Verify("abcd1234", ""))
	assert.False(t, hasher.Verify("abcd1234", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("abcd1234", "$2a$10$short"))
}

func TestNewPasswordHasher_CostOutOfRange(t *testing.T) {
	hasher := security.NewPasswordHasher(100)

	hash, err := hasher.Hash("abcd1234")
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
