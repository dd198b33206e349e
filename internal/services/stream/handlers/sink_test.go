package handlers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/processors"
	"github.com/Egham-7/fetchstream/internal/services/stream/writers"

	"github.com/stretchr/testify/assert"
)

func TestSink(t *testing.T) {
	t.Run("should write processed chunks and finish on done", func(t *testing.T) {
		// given
		var out bytes.Buffer
		sink := NewSink("counter", processors.NewSelectProcessor("count"), writers.NewStdoutWriter(&out, "counter"))
		cb := sink.Callbacks()

		// when
		cb.OnNext(models.NewChunk([]byte(`{"count":1}`), 0))
		cb.OnNext(models.NewChunk([]byte(`{"other":true}`), 1))
		cb.OnNext(models.NewChunk([]byte(`{"count":2}`), 2))
		cb.OnDone()

		// then
		assert.Equal(t, "[counter] 1\n[counter] 2\n", out.String())
		chunks, _ := sink.Stats()
		assert.Equal(t, int64(2), chunks)
		assert.NoError(t, sink.Err())
		select {
		case <-sink.Done():
		default:
			t.Fatal("sink not done")
		}
	})
	t.Run("should keep the first error", func(t *testing.T) {
		// given
		var out bytes.Buffer
		sink := NewSink("counter", processors.NewPassthroughProcessor(), writers.NewStdoutWriter(&out, ""))
		first := errors.New("first")

		// when
		sink.Callbacks().OnError(first)
		sink.Callbacks().OnError(errors.New("second"))

		// then
		assert.ErrorIs(t, sink.Err(), first)
		<-sink.Done()
	})
}
