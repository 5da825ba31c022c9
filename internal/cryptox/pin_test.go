package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPin(t *testing.T) {
	hash, err := HashPin("1234")
	require.NoError(t, err)
	assert.NotEqual(t, []byte("1234"), hash)

	assert.True(t, CheckPin(hash, "1234"))
	assert.False(t, CheckPin(hash, "0000"))
	assert.False(t, CheckPin(nil, "1234"))
}

func TestHashPin_Salted(t *testing.T) {
	h1, err := HashPin("1234")
	require.NoError(t, err)
	h2, err := HashPin("1234")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}
