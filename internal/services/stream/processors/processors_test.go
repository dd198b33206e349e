package processors

import (
	"context"
	"testing"

	"github.com/Egham-7/fetchstream/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		processor interface {
			Process(context.Context, *models.Chunk) ([]byte, error)
		}
		input string
		want  string
	}{
		{name: "passthrough keeps bytes", processor: NewPassthroughProcessor(), input: " a\n\nb ", want: " a\n\nb "},
		{name: "text trims lines", processor: NewTextProcessor(), input: " a\n\n b \n", want: "a\nb\n"},
		{name: "text skips blank chunks", processor: NewTextProcessor(), input: " \n ", want: ""},
		{name: "select reads a single document", processor: NewSelectProcessor("count"), input: `{"count":3}`, want: "3\n"},
		{name: "select reads every json line", processor: NewSelectProcessor("count"), input: "{\"count\":1}\n{\"count\":2}\n", want: "1\n2\n"},
		{name: "select skips non json lines", processor: NewSelectProcessor("count"), input: "hello\n{\"count\":2}\n", want: "2\n"},
		{name: "select skips missing paths", processor: NewSelectProcessor("missing"), input: `{"count":3}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := tt.processor.Process(ctx, models.NewChunk([]byte(tt.input), 0))

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out))
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("should default to passthrough", func(t *testing.T) {
		p, err := New(models.StreamConfig{})

		require.NoError(t, err)
		assert.Equal(t, models.DecodeRaw, p.Name())
	})
	t.Run("should build a select processor", func(t *testing.T) {
		p, err := New(models.StreamConfig{Decode: models.DecodeSelect, Select: "count"})

		require.NoError(t, err)
		assert.Equal(t, "select:count", p.Name())
	})
	t.Run("should require a select path", func(t *testing.T) {
		_, err := New(models.StreamConfig{Name: "counter", Decode: models.DecodeSelect})

		assert.ErrorContains(t, err, "requires a select path")
	})
	t.Run("should reject unknown modes", func(t *testing.T) {
		_, err := New(models.StreamConfig{Name: "counter", Decode: "xml"})

		assert.ErrorContains(t, err, "unknown decode mode")
	})
}
