package utils

import (
	"sync"

	"github.com/valyala/bytebufferpool"
)

// BufferPool hands out read buffers for stream sessions.
// bytebufferpool calibrates its size classes from what is returned.
type BufferPool struct {
	pool *bytebufferpool.Pool
}

var (
	globalPool     *BufferPool
	globalPoolOnce sync.Once
)

// NewBufferPool creates a new buffer pool
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: &bytebufferpool.Pool{},
	}
}

// GetSized retrieves a buffer whose B has length size
func (bp *BufferPool) GetSized(size int) *bytebufferpool.ByteBuffer {
	buf := bp.pool.Get()
	if cap(buf.B) < size {
		buf.B = make([]byte, size)
	} else {
		buf.B = buf.B[:size]
	}
	return buf
}

// Put returns a buffer to the pool
func (bp *BufferPool) Put(buf *bytebufferpool.ByteBuffer) {
	bp.pool.Put(buf)
}

// Global returns the global buffer pool instance
func Global() *BufferPool {
	globalPoolOnce.Do(func() {
		globalPool = NewBufferPool()
	})
	return globalPool
}

// GetSized is a convenience function that uses the global pool
func GetSized(size int) *bytebufferpool.ByteBuffer {
	return Global().GetSized(size)
}

// Put is a convenience function that uses the global pool
func Put(buf *bytebufferpool.ByteBuffer) {
	Global().Put(buf)
}
