package models

import "time"

// Transport kinds understood by the transport registry
const (
	TransportFastHTTP = "fasthttp"
	TransportHTTP     = "http"
)

// TransportConfig selects and tunes the HTTP client used by sessions
type TransportConfig struct {
	Kind        string        `json:"kind,omitzero" yaml:"kind"`
	DialTimeout time.Duration `json:"dial_timeout,omitzero" yaml:"dial_timeout"`
	UserAgent   string        `json:"user_agent,omitzero" yaml:"user_agent"`
}
