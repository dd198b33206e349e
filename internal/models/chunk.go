package models

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/tidwall/gjson"
)

// Chunk wraps the bytes of exactly one read from a response body.
// A chunk is immutable; every accessor decodes from the same bytes, so
// decoders can be called independently and in any order.
type Chunk struct {
	data   []byte
	seq    int
	status int
}

// NewChunk copies data into a new chunk at position seq of its session
func NewChunk(data []byte, seq int) *Chunk {
	return NewResponseChunk(data, seq, 0)
}

// NewResponseChunk is NewChunk for a body that answered with an HTTP status
func NewResponseChunk(data []byte, seq, status int) *Chunk {
	buf := make([]byte, len(data))
	copy(buf, data)
	return &Chunk{data: buf, seq: seq, status: status}
}

// Seq returns the 0-based position of the chunk within its session
func (c *Chunk) Seq() int {
	return c.seq
}

// Status returns the HTTP status of the response the chunk was read from,
// or 0 when the transport does not report one
func (c *Chunk) Status() int {
	return c.status
}

// Len returns the number of bytes in the chunk
func (c *Chunk) Len() int {
	return len(c.data)
}

// Bytes returns a copy of the raw chunk bytes
func (c *Chunk) Bytes() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// Text returns the chunk as a string
func (c *Chunk) Text() string {
	return string(c.data)
}

// JSON unmarshals the chunk into v
func (c *Chunk) JSON(v any) error {
	return json.Unmarshal(c.data, v)
}

// Get queries the chunk with a gjson path, e.g. "count" or "items.#.id".
// Chunks that are not valid JSON yield a non-existent result.
func (c *Chunk) Get(path string) gjson.Result {
	if !gjson.ValidBytes(c.data) {
		return gjson.Result{}
	}
	return gjson.GetBytes(c.data, path)
}

// Reader returns a fresh reader over the chunk bytes
func (c *Chunk) Reader() io.Reader {
	return bytes.NewReader(c.data)
}
