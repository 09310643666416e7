package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("Should round-trip a valid password", func(t *testing.T) {
		hashed, err := HashPassword("s3cret-pass")
		require.NoError(t, err)
		assert.NotEqual(t, "s3cret-pass", hashed)
		assert.True(t, CheckPassword(hashed, "s3cret-pass"))
		assert.False(t, CheckPassword(hashed, "other-pass"))
	})

	t.Run("Should reject short passwords", func(t *testing.T) {
		_, err := HashPassword("short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})
}
