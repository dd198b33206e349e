package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBufferPool_GetSized(t *testing.T) {
	t.Run("should grow a small buffer to the requested length", func(t *testing.T) {
		pool := NewBufferPool()

		buf := pool.GetSized(1024)

		assert.Len(t, buf.B, 1024)
		pool.Put(buf)
	})
	t.Run("should shrink the length of a large buffer", func(t *testing.T) {
		pool := NewBufferPool()
		buf := pool.GetSized(4096)
		pool.Put(buf)

		buf = pool.GetSized(16)

		assert.Len(t, buf.B, 16)
	})
}

func TestGlobal(t *testing.T) {
	assert.Same(t, Global(), Global())

	buf := GetSized(8)
	assert.Len(t, buf.B, 8)
	Put(buf)
}
