// Package fetchstream consumes chunked HTTP response bodies as a sequence of
// opaque messages.
//
// UseStream starts streaming a URL and calls OnNext for every chunk the
// transport delivers, then exactly one of OnDone or OnError. Calling
// Update with a different URL or a different *FetchOptions pointer restarts
// the stream; changing only the callbacks never does. Closing a stream is
// reported through OnDone, not OnError.
package fetchstream

import (
	"net/http"
	"time"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
	"github.com/Egham-7/fetchstream/internal/services/stream/controller"
	"github.com/Egham-7/fetchstream/internal/services/stream/transport"
)

type (
	Chunk           = models.Chunk
	FetchOptions    = models.FetchOptions
	Transport       = contracts.Transport
	Body            = contracts.Body
	StreamError     = contracts.StreamError
	StreamErrorType = contracts.StreamErrorType
	StatusError     = contracts.StatusError
)

const (
	InitiationFailure = contracts.InitiationFailure
	ReadFailure       = contracts.ReadFailure
	CancellationFold  = contracts.CancellationFold
)

var (
	IsInitiationFailure = contracts.IsInitiationFailure
	IsReadFailure       = contracts.IsReadFailure
	IsCancellation      = contracts.IsCancellation
)

// Options configure a stream. All callbacks are optional.
type Options struct {
	OnNext  func(*Chunk)
	OnError func(error)
	OnDone  func()

	// FetchParams is compared by pointer; pass the same pointer to keep a
	// running stream across updates
	FetchParams *FetchOptions

	// Transport defaults to a fasthttp transport
	Transport Transport
}

func (o Options) callbacks() contracts.Callbacks {
	return contracts.Callbacks{
		OnNext:  o.OnNext,
		OnError: o.OnError,
		OnDone:  o.OnDone,
	}
}

// Stream is a handle on a running subscription
type Stream struct {
	ctrl *controller.Controller
}

// UseStream starts streaming url
func UseStream(url string, opts Options) *Stream {
	tr := opts.Transport
	if tr == nil {
		tr = defaultTransport
	}
	return &Stream{
		ctrl: controller.New(tr, controller.Params{URL: url, Options: opts.FetchParams}, opts.callbacks()),
	}
}

// Update replaces the callbacks and restarts the stream if url or
// FetchParams changed. The transport is fixed at UseStream.
func (s *Stream) Update(url string, opts Options) {
	s.ctrl.Update(controller.Params{URL: url, Options: opts.FetchParams}, opts.callbacks())
}

// Close cancels the running stream; it then reports OnDone
func (s *Stream) Close() {
	s.ctrl.Close()
}

// Done is closed once the current stream reported OnDone or OnError
func (s *Stream) Done() <-chan struct{} {
	return s.ctrl.Done()
}

// NewFastHTTPTransport returns a transport backed by fasthttp
func NewFastHTTPTransport(dialTimeout time.Duration, userAgent string) Transport {
	return transport.NewFastHTTP(nil, dialTimeout, userAgent)
}

// NewHTTPTransport returns a transport backed by net/http; client may be nil
func NewHTTPTransport(client *http.Client, userAgent string) Transport {
	return transport.NewHTTP(client, userAgent)
}

var defaultTransport Transport = transport.NewFastHTTP(nil, 0, "fetchstream")
