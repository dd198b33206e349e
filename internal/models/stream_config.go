package models

import "time"

// Decode modes for printing chunks in the CLI
const (
	DecodeRaw    = "raw"
	DecodeText   = "text"
	DecodeSelect = "select"
)

// StreamConfig describes one stream the CLI subscribes to
type StreamConfig struct {
	Name           string            `json:"name" yaml:"name"`
	URL            string            `json:"url" yaml:"url"`
	Headers        map[string]string `json:"headers,omitzero" yaml:"headers"`
	Timeout        time.Duration     `json:"timeout,omitzero" yaml:"timeout"`
	ReadBufferSize int               `json:"read_buffer_size,omitzero" yaml:"read_buffer_size"`
	FailOnStatus   bool              `json:"fail_on_status,omitzero" yaml:"fail_on_status"`
	Decode         string            `json:"decode,omitzero" yaml:"decode"`
	Select         string            `json:"select,omitzero" yaml:"select"`
}
