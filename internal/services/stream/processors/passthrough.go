package processors

import (
	"context"

	"github.com/Egham-7/fetchstream/internal/models"
)

// PassthroughProcessor passes chunk bytes through without any modification
type PassthroughProcessor struct{}

// NewPassthroughProcessor creates a new passthrough processor
func NewPassthroughProcessor() *PassthroughProcessor {
	return &PassthroughProcessor{}
}

// Process returns the chunk bytes as-is
func (p *PassthroughProcessor) Process(_ context.Context, chunk *models.Chunk) ([]byte, error) {
	return chunk.Bytes(), nil
}

// Name returns the processor name
func (p *PassthroughProcessor) Name() string {
	return models.DecodeRaw
}
