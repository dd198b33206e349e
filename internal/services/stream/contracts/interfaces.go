package contracts

import (
	"context"
	"io"

	"github.com/Egham-7/fetchstream/internal/models"
)

// NextFunc receives one chunk of a stream
type NextFunc func(*models.Chunk)

// ErrorFunc receives the single failure of a session
type ErrorFunc func(error)

// DoneFunc signals graceful completion or a closed stream
type DoneFunc func()

// Callbacks is the set of stream callbacks; any of them may be nil
type Callbacks struct {
	OnNext  NextFunc
	OnError ErrorFunc
	OnDone  DoneFunc
}

// Next, Error and Done make a fixed Callbacks value usable as a CallbackAccessor
func (c Callbacks) Next() NextFunc   { return c.OnNext }
func (c Callbacks) Error() ErrorFunc { return c.OnError }
func (c Callbacks) Done() DoneFunc   { return c.OnDone }

// CallbackAccessor returns the callbacks registered right now.
// Sessions call it on every dispatch and never keep the result.
type CallbackAccessor interface {
	Next() NextFunc
	Error() ErrorFunc
	Done() DoneFunc
}

// Body is the incrementally readable response body of a stream.
// Close must be safe to call concurrently with a blocked Read and must
// unblock it.
type Body interface {
	io.Reader
	io.Closer
}

// StatusCoder is implemented by bodies of HTTP responses
type StatusCoder interface {
	StatusCode() int
}

// Transport issues the GET request of a session.
// Cancelling ctx aborts the request and any read of the returned body.
type Transport interface {
	Open(ctx context.Context, url string, opts *models.FetchOptions) (Body, error)
	Name() string
}

// ChunkProcessor turns a chunk into the bytes a consumer writes out
type ChunkProcessor interface {
	Process(ctx context.Context, chunk *models.Chunk) ([]byte, error)
	Name() string
}

// StreamWriter handles output with flush capabilities
type StreamWriter interface {
	Write([]byte) error
	Flush() error
	Close() error
}
