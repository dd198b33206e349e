package processors

import (
	"context"
	"strings"

	"github.com/Egham-7/fetchstream/internal/models"

	"github.com/tidwall/gjson"
)

// SelectProcessor extracts a gjson path from every JSON line of a chunk.
// Lines that are not JSON or do not contain the path are skipped.
type SelectProcessor struct {
	path string
}

// NewSelectProcessor creates a processor that selects path
func NewSelectProcessor(path string) *SelectProcessor {
	return &SelectProcessor{path: path}
}

// Process returns one selected value per line, or nil if nothing matched
func (p *SelectProcessor) Process(ctx context.Context, chunk *models.Chunk) ([]byte, error) {
	if result := chunk.Get(p.path); result.Exists() {
		return []byte(result.String() + "\n"), nil
	}

	var b strings.Builder
	for line := range strings.Lines(chunk.Text()) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line)
		if line == "" || !gjson.Valid(line) {
			continue
		}
		if result := gjson.Get(line, p.path); result.Exists() {
			b.WriteString(result.String())
			b.WriteByte('\n')
		}
	}
	if b.Len() == 0 {
		return nil, nil
	}
	return []byte(b.String()), nil
}

// Name returns the processor name
func (p *SelectProcessor) Name() string {
	return models.DecodeSelect + ":" + p.path
}
