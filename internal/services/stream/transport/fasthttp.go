package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

const defaultDialTimeout = 10 * time.Second

// DialFunc dials the connection for one stream
type DialFunc func(addr string) (net.Conn, error)

// FastHTTP opens streams with fasthttp. Every stream dials its own
// connection so that cancelling the stream can close that connection and
// unblock a pending body read.
type FastHTTP struct {
	dial      DialFunc
	userAgent string
}

// NewFastHTTP creates a fasthttp transport; a nil dial uses TCP with dialTimeout
func NewFastHTTP(dial DialFunc, dialTimeout time.Duration, userAgent string) *FastHTTP {
	if dial == nil {
		if dialTimeout <= 0 {
			dialTimeout = defaultDialTimeout
		}
		dial = func(addr string) (net.Conn, error) {
			return fasthttp.DialTimeout(addr, dialTimeout)
		}
	}
	return &FastHTTP{dial: dial, userAgent: userAgent}
}

// Open issues the GET request and returns the streamed response body
func (t *FastHTTP) Open(ctx context.Context, url string, opts *models.FetchOptions) (contracts.Body, error) {
	conn := &trackedConn{}
	client := &fasthttp.Client{
		Name:               t.userAgent,
		StreamResponseBody: true,
		MaxConnsPerHost:    1,
		Dial: func(addr string) (net.Conn, error) {
			c, err := t.dial(addr)
			if err != nil {
				return nil, err
			}
			return conn.set(c)
		},
	}

	// The context reaches both the request and the body read through the connection.
	stop := context.AfterFunc(ctx, conn.close)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.SetConnectionClose()
	for key, value := range opts.HeaderMap() {
		req.Header.Set(key, value)
	}

	release := func() {
		stop()
		conn.close()
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}

	if err := client.Do(req, resp); err != nil {
		release()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ctxErr, err)
		}
		return nil, err
	}
	status := resp.StatusCode()
	if opts.RejectsStatus(status) {
		release()
		return nil, &contracts.StatusError{StatusCode: status, Status: fmt.Sprintf("%d %s", status, fasthttp.StatusMessage(status))}
	}

	stream := resp.BodyStream()
	if stream == nil {
		// Small bodies may be read eagerly instead of streamed.
		body := append([]byte(nil), resp.Body()...)
		release()
		return &bufferedBody{Reader: bytes.NewReader(body), status: status}, nil
	}

	return &fasthttpBody{
		ctx:       ctx,
		stream:    stream,
		conn:      conn,
		release:   release,
		resp:      resp,
		status:    status,
		delimited: resp.Header.ContentLength() != -2,
	}, nil
}

// Name returns the transport name
func (t *FastHTTP) Name() string {
	return models.TransportFastHTTP
}

// fasthttpBody reads the response body stream of a single request
type fasthttpBody struct {
	ctx       context.Context
	stream    io.Reader
	conn      *trackedConn
	release   func()
	resp      *fasthttp.Response
	status    int
	readMux   sync.Mutex
	closeOnce sync.Once

	// delimited bodies end with their terminating chunk or content length,
	// never with the connection
	delimited bool
}

// Read returns io.ErrUnexpectedEOF when the connection ended before a
// delimited body was complete. fasthttp reports a connection dropped
// between two chunks as a plain io.EOF; it never reads the connection
// again after a complete body, so a connection that already failed means
// the body was cut short.
func (b *fasthttpBody) Read(p []byte) (int, error) {
	b.readMux.Lock()
	defer b.readMux.Unlock()
	if b.stream == nil {
		return 0, errors.New("fasthttp: body closed")
	}
	n, err := b.stream.Read(p)
	if err == io.EOF && b.delimited && b.conn.broken() {
		err = io.ErrUnexpectedEOF
	}
	if err != nil && !errors.Is(err, io.EOF) && b.ctx.Err() != nil {
		return n, fmt.Errorf("%w: %w", b.ctx.Err(), err)
	}
	return n, err
}

func (b *fasthttpBody) StatusCode() int {
	return b.status
}

// Close closes the connection first so a blocked Read returns, then
// releases the response once that read has finished
func (b *fasthttpBody) Close() error {
	b.closeOnce.Do(func() {
		b.conn.close()
		b.readMux.Lock()
		defer b.readMux.Unlock()
		if err := b.resp.CloseBodyStream(); err != nil && !contracts.IsConnectionClosed(err) {
			fiberlog.Debugf("fasthttp: closing body stream: %v", err)
		}
		b.stream = nil
		b.release()
	})
	return nil
}

// bufferedBody is a body fasthttp read in full before returning
type bufferedBody struct {
	*bytes.Reader
	status int
}

func (b *bufferedBody) Close() error {
	return nil
}

func (b *bufferedBody) StatusCode() int {
	return b.status
}

// trackedConn remembers the dialed connection so it can be closed from
// another goroutine, and watches its reads for the end of the connection
type trackedConn struct {
	mu      sync.Mutex
	conn    net.Conn
	closed  bool
	readErr atomic.Bool
}

// set adopts c and returns the connection fasthttp must use
func (t *trackedConn) set(c net.Conn) (net.Conn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		_ = c.Close()
		return nil, net.ErrClosed
	}
	t.conn = c
	return &watchedConn{Conn: c, owner: t}, nil
}

// broken reports whether a read on the connection returned an error
func (t *trackedConn) broken() bool {
	return t.readErr.Load()
}

func (t *trackedConn) close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	if t.conn != nil {
		_ = t.conn.Close()
	}
}

type watchedConn struct {
	net.Conn
	owner *trackedConn
}

func (c *watchedConn) Read(p []byte) (int, error) {
	n, err := c.Conn.Read(p)
	if err != nil {
		c.owner.readErr.Store(true)
	}
	return n, err
}
