package processors

import (
	"context"
	"strings"

	"github.com/Egham-7/fetchstream/internal/models"
)

// TextProcessor emits every non-blank line of a chunk, trimmed
type TextProcessor struct{}

// NewTextProcessor creates a new text processor
func NewTextProcessor() *TextProcessor {
	return &TextProcessor{}
}

// Process returns the trimmed lines of the chunk, or nil if there are none
func (p *TextProcessor) Process(ctx context.Context, chunk *models.Chunk) ([]byte, error) {
	var b strings.Builder
	for line := range strings.Lines(chunk.Text()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if b.Len() == 0 {
		return nil, nil
	}
	return []byte(b.String()), nil
}

// Name returns the processor name
func (p *TextProcessor) Name() string {
	return models.DecodeText
}
