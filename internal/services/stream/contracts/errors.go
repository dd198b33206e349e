package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// StreamErrorType categorizes how a session ended abnormally
type StreamErrorType int

const (
	// InitiationFailure means the request could not be started or had no usable body
	InitiationFailure StreamErrorType = iota
	// ReadFailure means reading the body failed after the request started
	ReadFailure
	// CancellationFold marks a failure caused by closing the session.
	// It is reported through OnDone, never through OnError.
	CancellationFold
)

func (t StreamErrorType) String() string {
	switch t {
	case InitiationFailure:
		return "InitiationFailure"
	case ReadFailure:
		return "ReadFailure"
	case CancellationFold:
		return "CancellationFold"
	default:
		return fmt.Sprintf("Unknown(%d)", int(t))
	}
}

// ErrSessionClosed is the cancel cause of a session that was closed or superseded
var ErrSessionClosed = errors.New("stream session closed")

// StreamError provides structured error handling
type StreamError struct {
	Type      StreamErrorType
	Message   string
	Cause     error
	SessionID string
	URL       string
}

func (e *StreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *StreamError) Unwrap() error {
	return e.Cause
}

// StatusError is returned by transports that reject a response status
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("unexpected response status %s", e.Status)
	}
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

// Error constructors
func NewInitiationError(sessionID, url string, cause error) *StreamError {
	return &StreamError{
		Type:      InitiationFailure,
		Message:   fmt.Sprintf("request to %s failed", url),
		Cause:     cause,
		SessionID: sessionID,
		URL:       url,
	}
}

func NewReadError(sessionID, url string, cause error) *StreamError {
	return &StreamError{
		Type:      ReadFailure,
		Message:   fmt.Sprintf("reading stream %s failed", url),
		Cause:     cause,
		SessionID: sessionID,
		URL:       url,
	}
}

func NewCancellationError(sessionID, url string, cause error) *StreamError {
	return &StreamError{
		Type:      CancellationFold,
		Message:   "stream closed",
		Cause:     cause,
		SessionID: sessionID,
		URL:       url,
	}
}

// Helper functions

// IsInitiationFailure checks if err is a request initiation failure
func IsInitiationFailure(err error) bool {
	return hasType(err, InitiationFailure)
}

// IsReadFailure checks if err is a body read failure
func IsReadFailure(err error) bool {
	return hasType(err, ReadFailure)
}

// IsCancellation checks if err was caused by closing the session
func IsCancellation(err error) bool {
	return hasType(err, CancellationFold) || errors.Is(err, ErrSessionClosed)
}

// IsClosedByCaller reports whether ctx ended because its session was closed
func IsClosedByCaller(ctx context.Context) bool {
	return ctx.Err() != nil && errors.Is(context.Cause(ctx), ErrSessionClosed)
}

// IsConnectionClosed checks if error indicates closed connection
func IsConnectionClosed(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "connection closed") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "body closed")
}

func hasType(err error, t StreamErrorType) bool {
	var streamErr *StreamError
	if errors.As(err, &streamErr) {
		return streamErr.Type == t
	}
	return false
}
