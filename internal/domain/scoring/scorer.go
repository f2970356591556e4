package scoring

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

// PositionBonus grants a random integer bonus in [MinBonus, MaxBonus] to
// windows whose normalized position falls in [From, To). The ranges are the
// contract, not incidental randomness: overriding them changes scoring
// behavior in a documented way.
type PositionBonus struct {
	From     float64 `yaml:"from"`
	To       float64 `yaml:"to"`
	MinBonus int     `yaml:"min_bonus"`
	MaxBonus int     `yaml:"max_bonus"`
	Reason   string  `yaml:"reason"`
}

type Config struct {
	Seed      int64 `yaml:"seed"`
	BaseScore int   `yaml:"base_score"`

	Position []PositionBonus `yaml:"position_bonuses"`

	SweetSpotMinSec   float64 `yaml:"sweet_spot_min_sec"`
	SweetSpotMaxSec   float64 `yaml:"sweet_spot_max_sec"`
	SweetSpotBonusMin int     `yaml:"sweet_spot_bonus_min"`
	SweetSpotBonusMax int     `yaml:"sweet_spot_bonus_max"`

	ShortLimitSec  float64 `yaml:"short_limit_sec"`
	LongLimitSec   float64 `yaml:"long_limit_sec"`
	OffSpotPenalty int     `yaml:"off_spot_penalty"`
}

func DefaultConfig() Config {
	return Config{
		BaseScore: 50,
		Position: []PositionBonus{
			{From: 0, To: 0.2, MinBonus: 10, MaxBonus: 20, Reason: "hook/introduction bonus"},
			{From: 0.2, To: 0.4, MinBonus: 5, MaxBonus: 15, Reason: "early main content bonus"},
			{From: 0.8, To: 1.0, MinBonus: 3, MaxBonus: 12, Reason: "conclusion bonus"},
		},
		SweetSpotMinSec:   30,
		SweetSpotMaxSec:   60,
		SweetSpotBonusMin: 5,
		SweetSpotBonusMax: 15,
		ShortLimitSec:     25,
		LongLimitSec:      75,
		OffSpotPenalty:    5,
	}
}

// ScoringError reports a corrupted candidate window. Scoring has no external
// dependency, so there is no recoverable-failure path: this is fatal.
type ScoringError struct {
	Reason string
}

func (e *ScoringError) Error() string { return "scoring: " + e.Reason }

// Score assigns a quality score to one window. It is a pure function of the
// window and config: randomness is drawn from a source seeded by the window
// identity, so scoring the same window twice (or in any parallel order)
// yields the same result. Scores are not clamped; the breakdown always sums
// to the final score.
func Score(w types.Window, cfg Config) (types.ScoredClip, error) {
	if w.End <= w.Start {
		return types.ScoredClip{}, &ScoringError{Reason: fmt.Sprintf("window has start %s >= end %s", w.Start, w.End)}
	}
	if w.Position < 0 || w.Position >= 1 {
		return types.ScoredClip{}, &ScoringError{Reason: fmt.Sprintf("window position %.3f outside [0,1)", w.Position)}
	}

	rng := rand.New(rand.NewSource(seedFor(w, cfg.Seed)))

	score := cfg.BaseScore
	breakdown := []types.ScoreEntry{{Reason: "base", Delta: cfg.BaseScore}}

	for _, b := range cfg.Position {
		if w.Position >= b.From && w.Position < b.To {
			delta := drawBonus(rng, b.MinBonus, b.MaxBonus)
			score += delta
			breakdown = append(breakdown, types.ScoreEntry{Reason: b.Reason, Delta: delta})
			break
		}
	}

	sec := w.Duration().Seconds()
	switch {
	case sec >= cfg.SweetSpotMinSec && sec <= cfg.SweetSpotMaxSec:
		delta := drawBonus(rng, cfg.SweetSpotBonusMin, cfg.SweetSpotBonusMax)
		score += delta
		breakdown = append(breakdown, types.ScoreEntry{Reason: "social-media sweet spot bonus", Delta: delta})
	case sec < cfg.ShortLimitSec:
		score -= cfg.OffSpotPenalty
		breakdown = append(breakdown, types.ScoreEntry{Reason: "too short for social feeds", Delta: -cfg.OffSpotPenalty})
	case sec > cfg.LongLimitSec:
		score -= cfg.OffSpotPenalty
		breakdown = append(breakdown, types.ScoreEntry{Reason: "runs long for social feeds", Delta: -cfg.OffSpotPenalty})
	}

	return types.ScoredClip{Window: w, Score: score, Breakdown: breakdown}, nil
}

func drawBonus(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}

// seedFor derives a stable per-window seed from the window bounds mixed with
// the configured run seed. Window identity (not a shared stream cursor)
// drives the randomness, so parallel execution order never changes results.
func seedFor(w types.Window, runSeed int64) int64 {
	h := fnv.New64a()
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(w.Start))
	binary.BigEndian.PutUint64(buf[8:16], uint64(w.End))
	_, _ = h.Write(buf[:])
	return int64(h.Sum64()) ^ runSeed
}
