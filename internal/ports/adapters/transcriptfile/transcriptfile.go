package transcriptfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

// Adapter loads whisper-style transcript JSON from disk:
// {"duration": 123.4, "segments": [{"start","end","text"}, ...]}.
// When duration is absent it is derived from the last span. Structural
// validation (ordering, overlaps) belongs to the segmenter.
type Adapter struct{}

func New() Adapter { return Adapter{} }

func (Adapter) Load(ctx context.Context, path string) (types.Transcript, error) {
	if err := ctx.Err(); err != nil {
		return types.Transcript{}, err
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("read transcript: %w", err)
	}

	var tr types.Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("parse transcript %s: %w", path, err)
	}

	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
	}
	if tr.Duration == 0 && len(tr.Segments) > 0 {
		tr.Duration = tr.Segments[len(tr.Segments)-1].End
	}
	return tr, nil
}
