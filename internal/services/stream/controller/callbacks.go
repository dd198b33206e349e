package controller

import (
	"sync/atomic"

	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
)

// callbackCell holds the latest callbacks of a controller. Sessions read
// through it on every dispatch, so a replaced callback takes effect with
// the next event of the running session.
type callbackCell struct {
	current atomic.Pointer[contracts.Callbacks]
}

func newCallbackCell(cb contracts.Callbacks) *callbackCell {
	cell := &callbackCell{}
	cell.Set(cb)
	return cell
}

func (c *callbackCell) Set(cb contracts.Callbacks) {
	c.current.Store(&cb)
}

func (c *callbackCell) Next() contracts.NextFunc {
	return c.current.Load().OnNext
}

func (c *callbackCell) Error() contracts.ErrorFunc {
	return c.current.Load().OnError
}

func (c *callbackCell) Done() contracts.DoneFunc {
	return c.current.Load().OnDone
}
