package simulator

import (
	"bufio"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	Register(app)
	return app
}

func TestStreamCounter(t *testing.T) {
	t.Run("should stream n counter messages", func(t *testing.T) {
		// given
		app := newApp()
		req := httptest.NewRequest("GET", "/counter?n=3&interval=1ms", nil)

		// when
		resp, err := app.Test(req, -1)

		// then
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/x-ndjson", resp.Header.Get("Content-Type"))

		var counts []int
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			var msg CounterMessage
			require.NoError(t, json.Unmarshal(scanner.Bytes(), &msg))
			counts = append(counts, msg.Count)
		}
		assert.Equal(t, []int{1, 2, 3}, counts)
	})
	t.Run("should reject an invalid interval", func(t *testing.T) {
		app := newApp()

		resp, err := app.Test(httptest.NewRequest("GET", "/counter?interval=soon", nil), -1)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
	t.Run("should reject a negative count", func(t *testing.T) {
		app := newApp()

		resp, err := app.Test(httptest.NewRequest("GET", "/counter?n=-1", nil), -1)

		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestStreamStatus(t *testing.T) {
	app := newApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/status/503", nil), -1)

	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "Service Unavailable"))
}
