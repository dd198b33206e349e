// Package controller keeps one stream session running for a changing set
// of parameters and callbacks.
package controller

import (
	"context"
	"sync"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
	"github.com/Egham-7/fetchstream/internal/services/stream/session"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

// Params identify a stream. Options are compared by pointer.
type Params struct {
	URL     string
	Options *models.FetchOptions
}

func (p Params) equal(other Params) bool {
	return p.URL == other.URL && p.Options == other.Options
}

// Controller restarts its session whenever the params change and routes
// events of the running session to the latest callbacks
type Controller struct {
	transport contracts.Transport
	callbacks *callbackCell

	mu      sync.Mutex
	params  Params
	current *session.Session
}

// New creates a controller and starts its first session
func New(transport contracts.Transport, params Params, callbacks contracts.Callbacks) *Controller {
	c := &Controller{
		transport: transport,
		callbacks: newCallbackCell(callbacks),
		params:    params,
	}
	c.mu.Lock()
	c.restart()
	c.mu.Unlock()
	return c
}

// Update stores the callbacks and restarts the session if params changed.
// The previous session is cancelled before the new one starts.
func (c *Controller) Update(params Params, callbacks contracts.Callbacks) {
	c.callbacks.Set(callbacks)

	c.mu.Lock()
	defer c.mu.Unlock()
	if params.equal(c.params) {
		return
	}
	fiberlog.Debugf("Stream parameters changed from %s to %s, restarting", c.params.URL, params.URL)
	c.params = params
	c.restart()
}

// Close cancels the running session. No session starts again until
// Update is called with different params.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil {
		c.current.Cancel()
	}
}

// Done is closed once the current session has reported its terminal event
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current.Done()
}

// Wait blocks until the current session ended or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	select {
	case <-c.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Session returns the current session
func (c *Controller) Session() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// restart must be called with c.mu held
func (c *Controller) restart() {
	if c.current != nil {
		c.current.Cancel()
	}
	c.current = session.New(c.transport, c.params.URL, c.params.Options, c.callbacks)
	c.current.Start()
}
