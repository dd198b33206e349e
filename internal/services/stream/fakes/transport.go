// Package fakes provides a scripted in-memory transport for exercising
// stream sessions without a network.
package fakes

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
)

// ErrBodyClosed is returned by reads on a body that was closed early
var ErrBodyClosed = errors.New("fake body closed")

type event struct {
	data []byte
	err  error
}

// Body is a response body driven by the test through Send, Fail and End
type Body struct {
	URL     string
	Options *models.FetchOptions

	events   chan event
	closed   chan struct{}
	once     sync.Once
	finished atomic.Bool
	cancels  atomic.Int32
	pending  []byte
	readMux  sync.Mutex
}

// NewBody creates an open body
func NewBody() *Body {
	return &Body{
		events: make(chan event, 64),
		closed: make(chan struct{}),
	}
}

// Send queues one chunk
func (b *Body) Send(data string) {
	b.events <- event{data: []byte(data)}
}

// Fail makes the next read after the queued chunks fail with err
func (b *Body) Fail(err error) {
	b.events <- event{err: err}
}

// End ends the body gracefully after the queued chunks
func (b *Body) End() {
	b.events <- event{err: io.EOF}
}

// Cancels returns how often the body was closed before it finished
func (b *Body) Cancels() int {
	return int(b.cancels.Load())
}

// Read implements io.Reader
func (b *Body) Read(p []byte) (int, error) {
	b.readMux.Lock()
	defer b.readMux.Unlock()

	if len(b.pending) > 0 {
		n := copy(p, b.pending)
		b.pending = b.pending[n:]
		return n, nil
	}

	select {
	case <-b.closed:
		return 0, ErrBodyClosed
	case ev := <-b.events:
		if ev.err != nil {
			b.finished.Store(true)
			return 0, ev.err
		}
		n := copy(p, ev.data)
		b.pending = ev.data[n:]
		return n, nil
	}
}

// Close implements io.Closer; it unblocks a pending Read
func (b *Body) Close() error {
	b.once.Do(func() {
		if !b.finished.Load() {
			b.cancels.Add(1)
		}
		close(b.closed)
	})
	return nil
}

// Transport hands out bodies created by NewBody in the order Open is called
type Transport struct {
	// OpenErr makes every Open fail
	OpenErr error
	// Block makes Open wait for its context before failing
	Block bool

	mu     sync.Mutex
	bodies []*Body
	opened chan *Body
}

// NewTransport creates a fake transport
func NewTransport() *Transport {
	return &Transport{opened: make(chan *Body, 64)}
}

// Open implements contracts.Transport
func (t *Transport) Open(ctx context.Context, url string, opts *models.FetchOptions) (contracts.Body, error) {
	t.mu.Lock()
	openErr, block := t.OpenErr, t.Block
	t.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if openErr != nil {
		return nil, openErr
	}

	body := NewBody()
	body.URL = url
	body.Options = opts
	context.AfterFunc(ctx, func() { _ = body.Close() })

	t.mu.Lock()
	t.bodies = append(t.bodies, body)
	t.mu.Unlock()
	t.opened <- body
	return body, nil
}

// Name implements contracts.Transport
func (t *Transport) Name() string {
	return "fake"
}

// Opened delivers every body as soon as its Open call returns
func (t *Transport) Opened() <-chan *Body {
	return t.opened
}

// Bodies returns the bodies opened so far
func (t *Transport) Bodies() []*Body {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*Body(nil), t.bodies...)
}

// Recorder collects callback invocations for assertions
type Recorder struct {
	mu     sync.Mutex
	chunks []*models.Chunk
	errs   []error
	dones  int
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Callbacks returns callbacks that record into r
func (r *Recorder) Callbacks() contracts.Callbacks {
	return contracts.Callbacks{
		OnNext:  r.OnNext,
		OnError: r.OnError,
		OnDone:  r.OnDone,
	}
}

func (r *Recorder) OnNext(c *models.Chunk) {
	r.mu.Lock()
	r.chunks = append(r.chunks, c)
	r.mu.Unlock()
}

func (r *Recorder) OnError(err error) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
}

func (r *Recorder) OnDone() {
	r.mu.Lock()
	r.dones++
	r.mu.Unlock()
}

// Texts returns the text of every received chunk in order
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.chunks))
	for _, c := range r.chunks {
		out = append(out, c.Text())
	}
	return out
}

// Errors returns the received errors
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.errs...)
}

// Dones returns how often OnDone fired
func (r *Recorder) Dones() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dones
}

// Events returns the total number of callback invocations
func (r *Recorder) Events() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.chunks) + len(r.errs) + r.dones
}
