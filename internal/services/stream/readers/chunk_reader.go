package readers

import (
	"errors"
	"io"
	"sync"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
	"github.com/Egham-7/fetchstream/internal/utils"

	"github.com/valyala/bytebufferpool"
)

// maxEmptyReads bounds consecutive (0, nil) reads before the body is treated as stalled
const maxEmptyReads = 100

// ChunkReader turns a response body into chunks, one chunk per read.
// It never merges or splits reads; framing is left to the consumer.
type ChunkReader struct {
	body      contracts.Body
	buffer    *bytebufferpool.ByteBuffer
	bufMux    sync.Mutex
	done      bool
	doneMux   sync.RWMutex
	sessionID string
	seq       int
	status    int
	pending   error
	closeOnce sync.Once
	closeErr  error
}

// NewChunkReader creates a reader over body whose chunks hold at most bufferSize bytes
func NewChunkReader(body contracts.Body, bufferSize int, sessionID string) *ChunkReader {
	if bufferSize <= 0 {
		bufferSize = models.DefaultReadBufferSize
	}
	r := &ChunkReader{
		body:      body,
		buffer:    utils.GetSized(bufferSize),
		sessionID: sessionID,
	}
	if coder, ok := body.(contracts.StatusCoder); ok {
		r.status = coder.StatusCode()
	}
	return r
}

// Next blocks for the next chunk. It returns io.EOF once the body is drained.
func (r *ChunkReader) Next() (*models.Chunk, error) {
	if r.isDone() {
		return nil, io.EOF
	}

	r.bufMux.Lock()
	defer r.bufMux.Unlock()
	if r.buffer == nil {
		return nil, io.EOF
	}
	if r.pending != nil {
		err := r.pending
		r.pending = nil
		return nil, err
	}

	for range maxEmptyReads {
		n, err := r.body.Read(r.buffer.B)
		if n > 0 {
			// Data that arrives together with an error is still a chunk; the
			// error is reported by the following call.
			if errors.Is(err, io.EOF) {
				r.setDone()
			} else if err != nil {
				r.pending = err
			}
			chunk := models.NewResponseChunk(r.buffer.B[:n], r.seq, r.status)
			r.seq++
			return chunk, nil
		}
		if errors.Is(err, io.EOF) {
			r.setDone()
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, io.ErrNoProgress
}

// Close releases the body and returns the read buffer to the pool.
// It may be called while Next is blocked; the body unblocks the read.
func (r *ChunkReader) Close() error {
	r.closeOnce.Do(func() {
		r.setDone()
		if r.body != nil {
			r.closeErr = r.body.Close()
		}
		go r.releaseBuffer()
	})
	return r.closeErr
}

// releaseBuffer waits for any in-flight read before pooling the buffer
func (r *ChunkReader) releaseBuffer() {
	r.bufMux.Lock()
	defer r.bufMux.Unlock()
	if r.buffer != nil {
		utils.Put(r.buffer)
		r.buffer = nil
	}
}

func (r *ChunkReader) isDone() bool {
	r.doneMux.RLock()
	defer r.doneMux.RUnlock()
	return r.done
}

// setDone marks the stream as done (thread-safe)
func (r *ChunkReader) setDone() {
	r.doneMux.Lock()
	r.done = true
	r.doneMux.Unlock()
}
