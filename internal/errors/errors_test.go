package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap(t *testing.T) {
	t.Run("WrapNilReturnsNil", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("WrapPreservesErrorChain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "loading client")
		assert.True(t, Is(wrapped, ErrNotFound))
		assert.Equal(t, "loading client: not found", wrapped.Error())
	})

	t.Run("DoubleWrapPreservesSentinel", func(t *testing.T) {
		wrapped := Wrap(Wrap(ErrConflict, "inner"), "outer")
		assert.True(t, Is(wrapped, ErrConflict))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrInternal,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
