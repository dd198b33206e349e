package fetchstream

import (
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Egham-7/fetchstream/internal/services/stream/simulator"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func startSimulator(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	simulator.Register(app)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.ShutdownWithTimeout(time.Second) })

	return "http://" + ln.Addr().String()
}

// collector gathers counter values from chunks that may hold several lines
type collector struct {
	mu       sync.Mutex
	counts   []int64
	texts    []string
	statuses []int
	errs     []error
	dones    int
}

func (c *collector) options(fp *FetchOptions, tr Transport) Options {
	return Options{
		OnNext: func(chunk *Chunk) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.texts = append(c.texts, chunk.Text())
			c.statuses = append(c.statuses, chunk.Status())
			for line := range strings.Lines(chunk.Text()) {
				if v := gjson.Get(line, "count"); v.Exists() {
					c.counts = append(c.counts, v.Int())
				}
			}
		},
		OnError: func(err error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.errs = append(c.errs, err)
		},
		OnDone: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			c.dones++
		},
		FetchParams: fp,
		Transport:   tr,
	}
}

func (c *collector) snapshot() ([]int64, []error, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.counts...), append([]error(nil), c.errs...), c.dones
}

func waitStream(t *testing.T, s *Stream) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not end")
	}
}

func TestUseStream(t *testing.T) {
	baseURL := startSimulator(t)
	transports := map[string]Transport{
		"fasthttp": nil,
		"http":     NewHTTPTransport(nil, "fetchstream-test"),
	}

	for name, tr := range transports {
		t.Run(name+" should deliver the stream and finish", func(t *testing.T) {
			// given
			c := &collector{}

			// when
			s := UseStream(baseURL+"/counter?n=3&interval=10ms", c.options(nil, tr))
			waitStream(t, s)

			// then
			counts, errs, dones := c.snapshot()
			assert.Equal(t, []int64{1, 2, 3}, counts)
			assert.Empty(t, errs)
			assert.Equal(t, 1, dones)
		})
		t.Run(name+" should stream the body of an error status", func(t *testing.T) {
			// given
			c := &collector{}

			// when
			s := UseStream(baseURL+"/status/500", c.options(nil, tr))
			waitStream(t, s)

			// then
			_, errs, dones := c.snapshot()
			assert.Empty(t, errs)
			assert.Equal(t, 1, dones)
			c.mu.Lock()
			defer c.mu.Unlock()
			assert.Equal(t, "Internal Server Error", strings.Join(c.texts, ""))
			require.NotEmpty(t, c.statuses)
			assert.Equal(t, 500, c.statuses[0])
		})
		t.Run(name+" should report an error status when asked to", func(t *testing.T) {
			// given
			c := &collector{}

			// when
			s := UseStream(baseURL+"/status/500", c.options(&FetchOptions{FailOnStatus: true}, tr))
			waitStream(t, s)

			// then
			_, errs, dones := c.snapshot()
			require.Len(t, errs, 1)
			var statusErr *StatusError
			assert.True(t, errors.As(errs[0], &statusErr))
			assert.True(t, IsInitiationFailure(errs[0]))
			assert.Equal(t, 0, dones)
		})
		t.Run(name+" should report an aborted stream as a read failure", func(t *testing.T) {
			// given
			c := &collector{}

			// when
			s := UseStream(baseURL+"/counter?n=5&interval=20ms&fail=2", c.options(nil, tr))
			waitStream(t, s)

			// then
			counts, errs, dones := c.snapshot()
			require.Len(t, errs, 1)
			assert.True(t, IsReadFailure(errs[0]))
			assert.LessOrEqual(t, len(counts), 2)
			assert.Equal(t, 0, dones)
		})
		t.Run(name+" should fold close into done", func(t *testing.T) {
			// given
			c := &collector{}
			s := UseStream(baseURL+"/counter?n=3&interval=10s", c.options(nil, tr))
			require.Eventually(t, func() bool {
				counts, _, _ := c.snapshot()
				return len(counts) == 1
			}, 5*time.Second, 10*time.Millisecond)

			// when
			s.Close()
			waitStream(t, s)

			// then
			counts, errs, dones := c.snapshot()
			assert.Equal(t, []int64{1}, counts)
			assert.Empty(t, errs)
			assert.Equal(t, 1, dones)
		})
		t.Run(name+" should restart on url change", func(t *testing.T) {
			// given
			c := &collector{}
			s := UseStream(baseURL+"/counter?n=3&interval=10s", c.options(nil, tr))
			require.Eventually(t, func() bool {
				counts, _, _ := c.snapshot()
				return len(counts) == 1
			}, 5*time.Second, 10*time.Millisecond)

			// when
			s.Update(baseURL+"/counter?n=2&interval=10ms", c.options(nil, tr))
			waitStream(t, s)

			// then
			require.Eventually(t, func() bool {
				_, _, dones := c.snapshot()
				return dones == 2
			}, 5*time.Second, 10*time.Millisecond)
			counts, errs, _ := c.snapshot()
			assert.Equal(t, []int64{1, 1, 2}, counts)
			assert.Empty(t, errs)
		})
	}
}
