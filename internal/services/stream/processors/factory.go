package processors

import (
	"fmt"

	"github.com/Egham-7/fetchstream/internal/models"
	"github.com/Egham-7/fetchstream/internal/services/stream/contracts"
)

// New returns the processor for the decode mode of cfg
func New(cfg models.StreamConfig) (contracts.ChunkProcessor, error) {
	switch cfg.Decode {
	case "", models.DecodeRaw:
		return NewPassthroughProcessor(), nil
	case models.DecodeText:
		return NewTextProcessor(), nil
	case models.DecodeSelect:
		if cfg.Select == "" {
			return nil, fmt.Errorf("stream %s: decode mode select requires a select path", cfg.Name)
		}
		return NewSelectProcessor(cfg.Select), nil
	default:
		return nil, fmt.Errorf("stream %s: unknown decode mode %q", cfg.Name, cfg.Decode)
	}
}
