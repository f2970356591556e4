package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/scoring"
	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/timeline"
	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/titles"
	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

type Order string

const (
	// OrderChronological preserves timeline order (playback-style consumption).
	OrderChronological Order = "chronological"
	// OrderTopPicks sorts by score descending with a stable chronological
	// tie-break for equal scores.
	OrderTopPicks Order = "top"
)

func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", OrderChronological:
		return OrderChronological, nil
	case OrderTopPicks:
		return OrderTopPicks, nil
	default:
		return "", fmt.Errorf("unknown order %q (want %q or %q)", s, OrderChronological, OrderTopPicks)
	}
}

type Options struct {
	Order            Order
	TitleConcurrency int
}

// Engine orchestrates segmenter, scorer and title generator into one run.
type Engine struct {
	seg    timeline.Config
	score  scoring.Config
	titles *titles.Generator
	opts   Options
	log    zerolog.Logger
}

func New(seg timeline.Config, score scoring.Config, gen *titles.Generator, opts Options, log zerolog.Logger) *Engine {
	if opts.Order == "" {
		opts.Order = OrderChronological
	}
	if opts.TitleConcurrency <= 0 {
		opts.TitleConcurrency = 4
	}
	return &Engine{seg: seg, score: score, titles: gen, opts: opts, log: log}
}

// BuildClips runs the single logical pass: segment once, score every window
// in window order, optionally re-sort best-first, then title every clip with
// its index in the final emitted order. The result length always equals the
// segmenter's window count; a run either completes fully or fails outright
// at segmentation/scoring with no partial list.
func (e *Engine) BuildClips(ctx context.Context, tr types.Transcript) ([]types.TitledClip, error) {
	windows, err := timeline.Segment(tr, e.seg)
	if err != nil {
		return nil, err
	}
	e.log.Debug().Int("windows", len(windows)).Float64("duration_sec", tr.Duration).Msg("segmented timeline")

	scored := make([]types.ScoredClip, 0, len(windows))
	for _, w := range windows {
		sc, err := scoring.Score(w, e.score)
		if err != nil {
			return nil, err
		}
		scored = append(scored, sc)
	}

	if e.opts.Order == OrderTopPicks {
		// Input is time-ordered, so a stable sort keeps chronological order
		// for equal scores.
		sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	}

	out, err := e.titleAll(ctx, scored)
	if err != nil {
		return nil, err
	}

	st := e.titles.Stats()
	e.log.Info().
		Int("clips", len(out)).
		Str("order", string(e.opts.Order)).
		Int64("ai_titles", st.AITitles).
		Int64("ai_failures", st.AIFailures).
		Int64("fallback_titles", st.FallbackTitles).
		Msg("clip selection complete")
	return out, nil
}

// titleAll titles clips concurrently, bounded by TitleConcurrency to respect
// the AI collaborator's rate limits. Each result lands in its own slot;
// cancellation stops further calls and fails the whole run rather than
// returning a partial list.
func (e *Engine) titleAll(ctx context.Context, scored []types.ScoredClip) ([]types.TitledClip, error) {
	out := make([]types.TitledClip, len(scored))
	errs := make([]error, len(scored))
	sem := make(chan struct{}, e.opts.TitleConcurrency)

	var wg sync.WaitGroup
	for i, sc := range scored {
		wg.Add(1)
		go func(i int, sc types.ScoredClip) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if err := ctx.Err(); err != nil {
				errs[i] = err
				return
			}
			tc, err := e.titles.Generate(ctx, sc, i+1, len(scored))
			if err != nil {
				errs[i] = err
				return
			}
			out[i] = tc
		}(i, sc)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
