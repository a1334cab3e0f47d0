package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateShortCode(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		first, err := generateShortCode("https://example.com", 7)
		assert.NoError(t, err)

		second, err := generateShortCode("https://example.com", 7)
		assert.NoError(t, err)

		assert.Equal(t, first, second)
	})

	t.Run("fixed length", func(t *testing.T) {
		code, err := generateShortCode("https://example.com", 7)

		assert.NoError(t, err)
		assert.Len(t, code, 7)
	})

	t.Run("uppercase hex alphabet", func(t *testing.T) {
		code, err := generateShortCode("https://example.com/some/long/path?with=query", 7)

		assert.NoError(t, err)
		assert.Regexp(t, `^[0-9A-F]{7}$`, code)
	})

	t.Run("distinct urls yield distinct codes", func(t *testing.T) {
		first, err := generateShortCode("https://example.com", 7)
		assert.NoError(t, err)

		second, err := generateShortCode("https://example.org", 7)
		assert.NoError(t, err)

		assert.NotEqual(t, first, second)
	})

	t.Run("length out of range", func(t *testing.T) {
		code, err := generateShortCode("https://example.com", 0)

		assert.Error(t, err)
		assert.Empty(t, code)

		code, err = generateShortCode("https://example.com", 100)

		assert.Error(t, err)
		assert.Empty(t, code)
	})
}
