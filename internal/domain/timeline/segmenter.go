package timeline

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

// Bracket maps a total-duration range onto a target clip count. A bracket
// matches when the total duration is at or below MaxDurationSec; a zero
// MaxDurationSec means no upper bound. The target is round(total/divisor)
// clamped to [MinClips, MaxClips].
type Bracket struct {
	MaxDurationSec float64 `yaml:"max_duration_sec"`
	DivisorSec     float64 `yaml:"divisor_sec"`
	MinClips       int     `yaml:"min_clips"`
	MaxClips       int     `yaml:"max_clips"`
}

type Config struct {
	Brackets      []Bracket `yaml:"brackets"`
	MinWindowSec  float64   `yaml:"min_window_sec"`
	MaxWindowSec  float64   `yaml:"max_window_sec"`
	SnapTolerance float64   `yaml:"snap_tolerance"` // fraction of the equal slice length
}

func DefaultConfig() Config {
	return Config{
		Brackets: []Bracket{
			{MaxDurationSec: 300, DivisorSec: 80, MinClips: 3, MaxClips: 5},
			{MaxDurationSec: 600, DivisorSec: 90, MinClips: 5, MaxClips: 7},
			{MaxDurationSec: 0, DivisorSec: 120, MinClips: 6, MaxClips: 8},
		},
		MinWindowSec:  15,
		MaxWindowSec:  90,
		SnapTolerance: 0.15,
	}
}

// SegmentationError reports an invalid input timeline. It is fatal to the
// run: callers must not proceed to scoring.
type SegmentationError struct {
	Reason string
}

func (e *SegmentationError) Error() string { return "segmentation: " + e.Reason }

func segErrf(format string, args ...any) error {
	return &SegmentationError{Reason: fmt.Sprintf(format, args...)}
}

// Segment partitions [0, total) into non-overlapping candidate windows.
// Equal-division cut points are snapped to nearby transcript span boundaries
// so windows avoid cutting mid-sentence, then window durations are forced
// into [MinWindowSec, MaxWindowSec] by merging undersized windows and
// trimming oversized ones back to a transcript boundary.
func Segment(tr types.Transcript, cfg Config) ([]types.Window, error) {
	if err := validateInput(tr); err != nil {
		return nil, err
	}

	total := dur(tr.Duration)
	target := targetCount(tr.Duration, cfg.Brackets)
	boundaries := collectBoundaries(tr.Segments, total)

	cuts := buildCuts(total, target, boundaries, cfg.SnapTolerance)
	wins := enforceBounds(cutsToWindows(cuts), boundaries, dur(cfg.MinWindowSec), dur(cfg.MaxWindowSec))

	out := make([]types.Window, 0, len(wins))
	for _, w := range wins {
		out = append(out, types.Window{
			Start:    w.start,
			End:      w.end,
			Position: w.start.Seconds() / tr.Duration,
			Text:     coveredText(tr.Segments, w.start, w.end),
		})
	}
	if err := validateWindows(out); err != nil {
		return nil, err
	}
	return out, nil
}

func validateInput(tr types.Transcript) error {
	if tr.Duration <= 0 {
		return segErrf("total duration must be positive, got %.2f", tr.Duration)
	}
	if len(tr.Segments) == 0 {
		return segErrf("transcript has no spans")
	}
	for i, s := range tr.Segments {
		if s.Start >= s.End {
			return segErrf("span %d has start %.2f >= end %.2f", i, s.Start, s.End)
		}
		if strings.TrimSpace(s.Text) == "" {
			return segErrf("span %d has empty text", i)
		}
		if i > 0 && s.Start < tr.Segments[i-1].End {
			return segErrf("span %d starts at %.2f before previous span ends at %.2f", i, s.Start, tr.Segments[i-1].End)
		}
	}
	return nil
}

func targetCount(totalSec float64, brackets []Bracket) int {
	b := brackets[len(brackets)-1]
	for _, cand := range brackets {
		if cand.MaxDurationSec > 0 && totalSec <= cand.MaxDurationSec {
			b = cand
			break
		}
		if cand.MaxDurationSec == 0 {
			b = cand
			break
		}
	}
	n := int(math.Round(totalSec / b.DivisorSec))
	if n < b.MinClips {
		n = b.MinClips
	}
	if n > b.MaxClips {
		n = b.MaxClips
	}
	return n
}

// collectBoundaries returns every span start/end inside (0, total), sorted
// and deduplicated. These are the sentence/utterance breaks windows snap to.
func collectBoundaries(spans []types.Span, total time.Duration) []time.Duration {
	out := make([]time.Duration, 0, 2*len(spans))
	for _, s := range spans {
		for _, sec := range [2]float64{s.Start, s.End} {
			d := dur(sec)
			if d > 0 && d < total {
				out = append(out, d)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, d := range out {
		if i == 0 || d != dedup[len(dedup)-1] {
			dedup = append(dedup, d)
		}
	}
	return dedup
}

func buildCuts(total time.Duration, target int, boundaries []time.Duration, tolerance float64) []time.Duration {
	slice := total / time.Duration(target)
	tol := time.Duration(tolerance * float64(slice))

	cuts := make([]time.Duration, target+1)
	cuts[target] = total
	for i := 1; i < target; i++ {
		ideal := slice * time.Duration(i)
		cut := ideal
		if snapped, ok := nearestBoundary(boundaries, ideal, tol); ok && snapped > cuts[i-1] && snapped < total {
			cut = snapped
		}
		// Equal-division cut is kept when snapping would break monotonicity.
		if cut <= cuts[i-1] {
			cut = ideal
		}
		cuts[i] = cut
	}
	return cuts
}

func nearestBoundary(boundaries []time.Duration, at, tol time.Duration) (time.Duration, bool) {
	if len(boundaries) == 0 {
		return 0, false
	}
	i := sort.Search(len(boundaries), func(i int) bool { return boundaries[i] >= at })

	best := time.Duration(-1)
	bestDist := tol + 1
	if i < len(boundaries) {
		if d := boundaries[i] - at; d <= tol {
			best, bestDist = boundaries[i], d
		}
	}
	if i > 0 {
		if d := at - boundaries[i-1]; d <= tol && d < bestDist {
			best = boundaries[i-1]
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

type window struct {
	start, end time.Duration
}

func cutsToWindows(cuts []time.Duration) []window {
	out := make([]window, 0, len(cuts)-1)
	for i := 0; i+1 < len(cuts); i++ {
		out = append(out, window{start: cuts[i], end: cuts[i+1]})
	}
	return out
}

// enforceBounds merges undersized windows (interior ones forward into their
// successor, a trailing one back into its predecessor) and trims oversized
// windows down to the latest transcript boundary within the allowed range.
// Trimming keeps the leading piece; the remainder becomes inter-clip dead
// space, which preserves the clip-count bound.
func enforceBounds(wins []window, boundaries []time.Duration, minW, maxW time.Duration) []window {
	merged := make([]window, 0, len(wins))
	for i := 0; i < len(wins); i++ {
		w := wins[i]
		if w.end-w.start < minW {
			if i+1 < len(wins) {
				wins[i+1].start = w.start
				continue
			}
			if len(merged) > 0 {
				last := &merged[len(merged)-1]
				end := w.end
				if end-last.start > maxW {
					end = last.start + maxW
				}
				last.end = end
				continue
			}
			// A single undersized window happens only on timelines shorter
			// than the minimum; keep it rather than return nothing.
		}
		merged = append(merged, w)
	}

	for i := range merged {
		if merged[i].end-merged[i].start > maxW {
			merged[i].end = trimEnd(boundaries, merged[i].start, minW, maxW)
		}
	}
	return merged
}

// trimEnd picks the latest span boundary within [start+minW, start+maxW],
// falling back to the hard cap when no boundary is in range.
func trimEnd(boundaries []time.Duration, start, minW, maxW time.Duration) time.Duration {
	lo, hi := start+minW, start+maxW
	i := sort.Search(len(boundaries), func(i int) bool { return boundaries[i] > hi })
	if i > 0 && boundaries[i-1] >= lo {
		return boundaries[i-1]
	}
	return hi
}

func coveredText(spans []types.Span, start, end time.Duration) string {
	var parts []string
	for _, s := range spans {
		if dur(s.End) <= start || dur(s.Start) >= end {
			continue
		}
		if t := strings.TrimSpace(s.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func validateWindows(wins []types.Window) error {
	if len(wins) == 0 {
		return segErrf("no windows produced")
	}
	for i, w := range wins {
		if w.End <= w.Start {
			return segErrf("window %d has non-positive duration", i)
		}
		if i > 0 && w.Start < wins[i-1].End {
			return segErrf("window %d overlaps its predecessor", i)
		}
	}
	return nil
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
