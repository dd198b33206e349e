// Package session runs one streaming request: it opens the body, reads it
// chunk by chunk and reports exactly one terminal event.
package session

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
	"github.com/Egham-7/fetchstream/internal/services/stream/readers"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// Session owns the lifecycle of a single streaming request
type Session struct {
	id        string
	url       string
	opts      *models.FetchOptions
	transport contracts.Transport
	callbacks contracts.CallbackAccessor

	ctx    context.Context
	cancel context.CancelCauseFunc

	mu     sync.Mutex
	reader *readers.ChunkReader

	started    atomic.Bool
	closed     atomic.Bool
	terminated atomic.Bool
	done       chan struct{}
}

// New creates a session; nothing happens until Start
func New(transport contracts.Transport, url string, opts *models.FetchOptions, callbacks contracts.CallbackAccessor) *Session {
	ctx, cancel := context.WithCancelCause(opts.Parent())
	return &Session{
		id:        uuid.New().String(),
		url:       url,
		opts:      opts,
		transport: transport,
		callbacks: callbacks,
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// ID returns the session id used in log lines and errors
func (s *Session) ID() string {
	return s.id
}

// URL returns the URL the session streams from
func (s *Session) URL() string {
	return s.url
}

// Done is closed after the session dispatched its terminal event
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start runs the session on its own goroutine. Later calls are no-ops.
func (s *Session) Start() {
	if !s.started.CompareAndSwap(false, true) {
		return
	}
	go s.run()
}

// Cancel closes the session. The request is aborted and the body closed
// before Cancel returns; the session then reports OnDone exactly once
// unless it already ended.
func (s *Session) Cancel() {
	// The flag survives a parent context that was cancelled first and so
	// kept its own cause.
	s.closed.Store(true)
	s.cancel(contracts.ErrSessionClosed)

	s.mu.Lock()
	reader := s.reader
	s.mu.Unlock()
	if reader != nil {
		if err := reader.Close(); err != nil {
			fiberlog.Debugf("[%s] Error closing body on cancel: %v", s.id, err)
		}
	}

	// A session that never started still owes its terminal event.
	if s.started.CompareAndSwap(false, true) {
		go s.run()
	}
}

func (s *Session) run() {
	defer close(s.done)
	defer s.cancel(nil)

	startTime := time.Now()
	fiberlog.Infof("[%s] Starting stream session for %s via %s", s.id, s.url, s.transport.Name())

	if s.closedByCaller() {
		s.finish()
		return
	}

	body, err := s.transport.Open(s.ctx, s.url, s.opts)
	if err != nil {
		if s.closedByCaller() {
			s.fold(err)
			return
		}
		fiberlog.Warnf("[%s] Stream request failed: %v", s.id, err)
		s.fail(contracts.NewInitiationError(s.id, s.url, err))
		return
	}
	if body == nil {
		s.fail(contracts.NewInitiationError(s.id, s.url, errors.New("response has no body")))
		return
	}

	reader := readers.NewChunkReader(body, s.opts.BufferSize(), s.id)
	s.mu.Lock()
	s.reader = reader
	s.mu.Unlock()
	defer func() {
		if err := reader.Close(); err != nil {
			fiberlog.Debugf("[%s] Error closing body: %v", s.id, err)
		}
	}()

	var totalChunks, totalBytes int64
	defer func() {
		fiberlog.Infof("[%s] Stream session ended: %d chunks, %d bytes in %v",
			s.id, totalChunks, totalBytes, time.Since(startTime))
	}()

	// Cancel may have run before the reader was registered.
	if s.closedByCaller() {
		s.finish()
		return
	}

	for {
		chunk, err := reader.Next()
		if s.closedByCaller() {
			fiberlog.Infof("[%s] Stream closed by caller", s.id)
			if errors.Is(err, io.EOF) {
				err = nil
			}
			s.fold(err)
			return
		}
		if errors.Is(err, io.EOF) {
			fiberlog.Infof("[%s] Stream completed naturally", s.id)
			s.finish()
			return
		}
		if err != nil {
			// The body may report our own closing before the context does.
			if cause := context.Cause(s.ctx); cause != nil && !errors.Is(cause, contracts.ErrSessionClosed) {
				err = errors.Join(err, cause)
			}
			fiberlog.Warnf("[%s] Stream read failed: %v", s.id, err)
			s.fail(contracts.NewReadError(s.id, s.url, err))
			return
		}

		totalChunks++
		totalBytes += int64(chunk.Len())
		if next := s.callbacks.Next(); next != nil {
			next(chunk)
		}

		if totalChunks%100 == 0 {
			fiberlog.Debugf("[%s] Stream progress: %d chunks, %d bytes", s.id, totalChunks, totalBytes)
		}
	}
}

// closedByCaller reports whether Cancel was called
func (s *Session) closedByCaller() bool {
	return s.closed.Load() || contracts.IsClosedByCaller(s.ctx)
}

// fold ends a closed session gracefully; err is whatever the close made
// the request or the read fail with
func (s *Session) fold(err error) {
	if err != nil {
		fiberlog.Debugf("[%s] Dropping error after close: %v", s.id, contracts.NewCancellationError(s.id, s.url, err))
	}
	s.finish()
}

// finish reports graceful completion
func (s *Session) finish() {
	if !s.terminated.CompareAndSwap(false, true) {
		return
	}
	if done := s.callbacks.Done(); done != nil {
		done()
	}
}

// fail reports the single failure of the session
func (s *Session) fail(err error) {
	if !s.terminated.CompareAndSwap(false, true) {
		return
	}
	if onError := s.callbacks.Error(); onError != nil {
		onError(err)
	}
}
