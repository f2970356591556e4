package ports

import (
	"context"

	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

// TextRequest is a single prompt for the external text-generation service.
type TextRequest struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// TextResult carries the model output. Reasoning models may leave Content
// empty and put usable text in Reasoning; callers must handle both.
type TextResult struct {
	Content   string
	Reasoning string
}

type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (TextResult, error)
}

type TranscriptSource interface {
	Load(ctx context.Context, path string) (types.Transcript, error)
}
