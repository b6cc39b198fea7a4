package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBcrypt_HashNeverPlaintext(t *testing.T) {
	h := NewBcrypt(4)

	digest, err := h.Hash("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", digest)
	assert.NotEmpty(t, digest)
}

func TestBcrypt_Salting(t *testing.T) {
	h := NewBcrypt(4)

	first, err := h.Hash("same-password")
	require.NoError(t, err)
	second, err := h.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, h.Compare("same-password", first))
	assert.True(t, h.Compare("same-password", second))
}

func TestBcrypt_CompareMismatch(t *testing.T) {
	h := NewBcrypt(4)

	digest, err := h.Hash("correct")
	require.NoError(t, err)

	assert.False(t, h.Compare("wrong", digest))
	assert.False(t, h.Compare("", digest))
}

func TestBcrypt_CostFallback(t *testing.T) {
	h := NewBcrypt(-1)

	digest, err := h.Hash("pw")
	require.NoError(t, err)
	assert.True(t, h.Compare("pw", digest))
}
