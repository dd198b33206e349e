// Package simulator serves synthetic chunked streams for local testing of
// stream consumers.
package simulator

import (
	"bufio"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/valyala/fasthttp"
)

const (
	defaultCount    = 5
	defaultInterval = 100 * time.Millisecond
	maxCount        = 10000
)

// CounterMessage is one message of the counter stream
type CounterMessage struct {
	Count int `json:"count"`
}

// CounterOptions controls the counter stream, read from the query string
type CounterOptions struct {
	Count    int
	Interval time.Duration
	// FailAfter aborts the connection after that many messages; 0 never fails
	FailAfter int
}

// Register mounts the simulator routes on app
func Register(app fiber.Router) {
	app.Get("/counter", StreamCounter)
	app.Get("/status/:code", StreamStatus)
}

// ParseCounterOptions reads n, interval and fail from the query string
func ParseCounterOptions(c *fiber.Ctx) (CounterOptions, error) {
	opts := CounterOptions{
		Count:     c.QueryInt("n", defaultCount),
		Interval:  defaultInterval,
		FailAfter: c.QueryInt("fail", 0),
	}
	if raw := c.Query("interval"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return opts, fiber.NewError(fiber.StatusBadRequest, "invalid interval: "+err.Error())
		}
		opts.Interval = interval
	}
	if opts.Count < 0 || opts.Count > maxCount {
		return opts, fiber.NewError(fiber.StatusBadRequest, "n out of range")
	}
	return opts, nil
}

// StreamCounter streams newline terminated counter messages as chunks
func StreamCounter(c *fiber.Ctx) error {
	opts, err := ParseCounterOptions(c)
	if err != nil {
		return err
	}

	fasthttpCtx := c.Context()
	fasthttpCtx.Response.Header.Set("Content-Type", "application/x-ndjson")
	fasthttpCtx.Response.Header.Set("Cache-Control", "no-cache")

	fasthttpCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		startTime := time.Now()

		for i := 1; i <= opts.Count; i++ {
			if opts.FailAfter > 0 && i > opts.FailAfter {
				fiberlog.Infof("Counter stream aborting after %d messages", opts.FailAfter)
				if err := fasthttpCtx.Conn().Close(); err != nil {
					fiberlog.Debugf("Counter stream abort: %v", err)
				}
				return
			}

			data, err := json.Marshal(CounterMessage{Count: i})
			if err != nil {
				fiberlog.Errorf("Failed to marshal counter message %d: %v", i, err)
				return
			}
			data = append(data, '\n')

			if _, err := w.Write(data); err != nil {
				fiberlog.Infof("Counter stream client went away at message %d: %v", i, err)
				return
			}
			if err := w.Flush(); err != nil {
				fiberlog.Infof("Counter stream client went away at message %d: %v", i, err)
				return
			}

			if i < opts.Count && opts.Interval > 0 {
				time.Sleep(opts.Interval)
			}
		}

		fiberlog.Debugf("Counter stream completed: %d messages in %v", opts.Count, time.Since(startTime))
	}))

	return nil
}

// StreamStatus answers with the status code from the path
func StreamStatus(c *fiber.Ctx) error {
	code, err := c.ParamsInt("code")
	if err != nil || code < 100 || code > 599 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid status code")
	}
	return c.Status(code).SendString(fasthttp.StatusMessage(code))
}
