package types

import "time"

// Transcript is the transcription collaborator's output: total duration in
// seconds plus ordered, non-overlapping timed spans. The engine never
// mutates it; structural validation happens in the timeline segmenter.
type Transcript struct {
	Duration float64 `json:"duration"`
	Segments []Span  `json:"segments"`
}

type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Window is a candidate clip interval produced by the segmenter. Windows in
// a single run never overlap and are emitted in ascending time order.
type Window struct {
	Start    time.Duration
	End      time.Duration
	Position float64 // normalized start location in [0,1)
	Text     string  // concatenated transcript text covered by the window
}

func (w Window) Duration() time.Duration { return w.End - w.Start }

// ScoreEntry is a single named score contribution. The sum of a clip's
// breakdown always equals its final score.
type ScoreEntry struct {
	Reason string `json:"reason"`
	Delta  int    `json:"delta"`
}

type ScoredClip struct {
	Window
	Score     int
	Breakdown []ScoreEntry
}

type TitleSource string

const (
	TitleSourceAI       TitleSource = "ai"
	TitleSourceFallback TitleSource = "fallback"
)

// TitledClip is the terminal entity returned to the caller.
type TitledClip struct {
	ScoredClip
	Title  string
	Source TitleSource
}

type Manifest struct {
	RunID       string         `json:"run_id"`
	Input       string         `json:"input"`
	DurationSec float64        `json:"duration_sec"`
	GeneratedAt time.Time      `json:"generated_at"`
	Order       string         `json:"order"`
	Clips       []ManifestClip `json:"clips"`
}

type ManifestClip struct {
	ID          string       `json:"id"`
	StartSec    float64      `json:"start_sec"`
	EndSec      float64      `json:"end_sec"`
	DurationSec float64      `json:"duration_sec"`
	Position    float64      `json:"position"`
	Score       int          `json:"score"`
	Breakdown   []ScoreEntry `json:"score_breakdown"`
	Title       string       `json:"title"`
	TitleSource string       `json:"title_source"`
	Text        string       `json:"text"`
}
