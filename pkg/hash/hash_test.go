package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	Cost = bcrypt.MinCost
	m.Run()
}

func TestHashPassword_RoundTrip(t *testing.T) {
	h, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", h)

	assert.True(t, CheckPassword(h, "pw1"))
	assert.False(t, CheckPassword(h, "pw2"))
	assert.False(t, CheckPassword("not-a-hash", "pw1"))
}

func TestHashPassword_Salted(t *testing.T) {
	a, err := HashPassword("same")
	require.NoError(t, err)
	b, err := HashPassword("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCheckMissing_AlwaysFalse(t *testing.T) {
	assert.False(t, CheckMissing("no-such-user"))
	assert.False(t, CheckMissing("anything"))
}
