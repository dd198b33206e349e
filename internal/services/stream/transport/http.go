package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
)

// HTTP opens streams with net/http, whose requests and body reads follow
// the request context natively
type HTTP struct {
	client    *http.Client
	userAgent string
}

// NewHTTP creates a net/http transport; a nil client uses a client without
// an overall timeout, since streams are expected to stay open
func NewHTTP(client *http.Client, userAgent string) *HTTP {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTP{client: client, userAgent: userAgent}
}

// Open issues the GET request and returns the response body
func (t *HTTP) Open(ctx context.Context, url string, opts *models.FetchOptions) (contracts.Body, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if t.userAgent != "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range opts.HeaderMap() {
		req.Header.Set(key, value)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	if opts.RejectsStatus(resp.StatusCode) {
		_ = resp.Body.Close()
		return nil, &contracts.StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, fmt.Errorf("response from %s has no body", url)
	}
	return &httpBody{ReadCloser: resp.Body, status: resp.StatusCode}, nil
}

type httpBody struct {
	io.ReadCloser
	status int
}

func (b *httpBody) StatusCode() int {
	return b.status
}

// Name returns the transport name
func (t *HTTP) Name() string {
	return models.TransportHTTP
}
