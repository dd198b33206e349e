package models

import "context"

// DefaultReadBufferSize caps how many bytes a single body read may return
const DefaultReadBufferSize = 32 * 1024

// FetchOptions configures the request a stream session issues.
// Sessions compare options by pointer: handing a controller a new
// *FetchOptions restarts its session even when the contents are equal.
type FetchOptions struct {
	// Headers are added to the GET request
	Headers map[string]string `json:"headers,omitzero" yaml:"headers"`

	// ReadBufferSize is the largest chunk a single read can produce
	ReadBufferSize int `json:"read_buffer_size,omitzero" yaml:"read_buffer_size"`

	// FailOnStatus turns a response status >= 400 into a failure to start
	// the stream. By default such bodies are streamed like any other.
	FailOnStatus bool `json:"fail_on_status,omitzero" yaml:"fail_on_status"`

	// Context is the parent of the session context. Its cancellation or
	// deadline is reported as an error, unlike closing the stream.
	Context context.Context `json:"-" yaml:"-"`
}

// BufferSize returns the configured read buffer size or the default
func (o *FetchOptions) BufferSize() int {
	if o == nil || o.ReadBufferSize <= 0 {
		return DefaultReadBufferSize
	}
	return o.ReadBufferSize
}

// Parent returns the parent context for a session
func (o *FetchOptions) Parent() context.Context {
	if o == nil || o.Context == nil {
		return context.Background()
	}
	return o.Context
}

// HeaderMap returns the request headers, never nil
func (o *FetchOptions) HeaderMap() map[string]string {
	if o == nil || o.Headers == nil {
		return map[string]string{}
	}
	return o.Headers
}

// RejectsStatus reports whether a response with status must not be streamed
func (o *FetchOptions) RejectsStatus(status int) bool {
	return o != nil && o.FailOnStatus && status >= 400
}
