package titles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/GICristian/YouTube-Clip-Generator/internal/ports"
	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

type Config struct {
	Temperature     float64  `yaml:"temperature"`
	MaxTokens       int      `yaml:"max_tokens"`
	MaxTitleLen     int      `yaml:"max_title_len"`
	PromptTextLimit int      `yaml:"prompt_text_limit"` // runes of covered text quoted in the prompt
	Templates       []string `yaml:"templates"`
}

// Each template takes the clip duration in whole seconds. Selection rotates
// by clip index, so consecutive clips never share a template.
var defaultTemplates = []string{
	"🔥 Epic Moment: %ds of Pure Action!",
	"🎯 Must-Watch: %d-Second Viral Clip!",
	"⚡ Incredible %ds That Will Amaze You!",
	"🚀 Viral Alert: %ds of Epic Content!",
	"💥 Mind-Blowing %d-Second Moment!",
	"🎬 Cinema Gold: %ds of Pure Entertainment!",
	"🔥 This %ds Clip is INSANE!",
	"⭐ Highlight Reel: %ds of Greatness!",
	"🎯 Perfect %ds for Social Media!",
	"💎 Hidden Gem: %ds of Quality Content!",
}

func DefaultConfig() Config {
	return Config{
		Temperature:     0.7,
		MaxTokens:       300,
		MaxTitleLen:     120,
		PromptTextLimit: 800,
		Templates:       defaultTemplates,
	}
}

// Stats counts title outcomes across a generator's lifetime.
type Stats struct {
	AITitles       int64
	AIFailures     int64
	FallbackTitles int64
}

// Generator produces one title per clip, preferring the external text model
// and falling back to deterministic templates on any transient failure.
type Generator struct {
	cfg Config
	ai  ports.TextGenerator // nil disables the AI path entirely
	log zerolog.Logger

	aiTitles   atomic.Int64
	aiFailures atomic.Int64
	fallbacks  atomic.Int64
}

func New(cfg Config, ai ports.TextGenerator, log zerolog.Logger) *Generator {
	if len(cfg.Templates) == 0 {
		cfg.Templates = defaultTemplates
	}
	if cfg.MaxTitleLen <= 0 {
		cfg.MaxTitleLen = 120
	}
	return &Generator{cfg: cfg, ai: ai, log: log}
}

// Generate titles one clip. clipIndex is the 1-based position of the clip in
// the final emitted order; titles are position-aware relative to what the
// viewer actually sees. Transient AI failures (timeout, transport error,
// empty output) resolve to the fallback path and are never surfaced; only
// parent-context cancellation is returned as an error.
func (g *Generator) Generate(ctx context.Context, clip types.ScoredClip, clipIndex, totalClips int) (types.TitledClip, error) {
	if err := ctx.Err(); err != nil {
		return types.TitledClip{}, err
	}

	if g.ai != nil {
		title, err := g.aiTitle(ctx, clip, clipIndex, totalClips)
		if err == nil {
			g.aiTitles.Add(1)
			return types.TitledClip{ScoredClip: clip, Title: title, Source: types.TitleSourceAI}, nil
		}
		if ctx.Err() != nil {
			return types.TitledClip{}, ctx.Err()
		}
		g.aiFailures.Add(1)
		g.log.Warn().Err(err).Int("clip", clipIndex).Msg("ai title failed, using fallback template")
	}

	g.fallbacks.Add(1)
	title := g.fallbackTitle(clipIndex, clip.Duration())
	return types.TitledClip{ScoredClip: clip, Title: title, Source: types.TitleSourceFallback}, nil
}

func (g *Generator) Stats() Stats {
	return Stats{
		AITitles:       g.aiTitles.Load(),
		AIFailures:     g.aiFailures.Load(),
		FallbackTitles: g.fallbacks.Load(),
	}
}

func (g *Generator) aiTitle(ctx context.Context, clip types.ScoredClip, clipIndex, totalClips int) (string, error) {
	res, err := g.ai.Generate(ctx, ports.TextRequest{
		Prompt:      g.buildPrompt(clip, clipIndex, totalClips),
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	// Reasoning models sometimes return an empty content field and put the
	// usable text in the reasoning field; take whichever is non-empty.
	raw := strings.TrimSpace(res.Content)
	if raw == "" {
		raw = strings.TrimSpace(res.Reasoning)
	}

	title := sanitizeTitle(raw, g.cfg.MaxTitleLen)
	if title == "" {
		return "", errors.New("model returned empty title")
	}
	return title, nil
}

func (g *Generator) buildPrompt(clip types.ScoredClip, clipIndex, totalClips int) string {
	bucket, role := positionBucket(clip.Position)
	text := truncateRunes(strings.TrimSpace(clip.Text), g.cfg.PromptTextLimit)

	var b strings.Builder
	b.WriteString("You write titles for short viral clips cut from a longer video.\n\n")
	fmt.Fprintf(&b, "CLIP DETAILS:\n")
	fmt.Fprintf(&b, "- Clip %d of %d\n", clipIndex, totalClips)
	fmt.Fprintf(&b, "- Duration: %.0f seconds\n", clip.Duration().Seconds())
	fmt.Fprintf(&b, "- Position: %s (%.0f%% through the video)\n", bucket, clip.Position*100)
	fmt.Fprintf(&b, "- Narrative role: %s\n", role)
	if text != "" {
		fmt.Fprintf(&b, "\nTRANSCRIPT EXCERPT:\n%s\n", text)
	}
	b.WriteString("\nWrite ONE title for this clip. It must be unique versus the other clips in this set, ")
	b.WriteString("reflect the clip's narrative role, and be at most ")
	fmt.Fprintf(&b, "%d characters. ", g.cfg.MaxTitleLen)
	b.WriteString("Respond with the title text only, no quotes, no markdown.")
	return b.String()
}

func (g *Generator) fallbackTitle(clipIndex int, d time.Duration) string {
	idx := (clipIndex - 1) % len(g.cfg.Templates)
	if idx < 0 {
		idx += len(g.cfg.Templates)
	}
	title := fmt.Sprintf(g.cfg.Templates[idx], int(d.Round(time.Second).Seconds()))
	return truncateRunes(title, g.cfg.MaxTitleLen)
}

// positionBucket uses the same brackets as scoring: early (<20%),
// early-middle (20-40%), middle (40-80%), late (>80%).
func positionBucket(p float64) (bucket, role string) {
	switch {
	case p < 0.2:
		return "early", "a hook that grabs attention in the first seconds"
	case p < 0.4:
		return "early-middle", "a key insight or revelation"
	case p < 0.8:
		return "middle", "a turning point in the main content"
	default:
		return "late", "a conclusion or call to action"
	}
}

func sanitizeTitle(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.Trim(s, `"'`)
	s = strings.TrimSpace(s)
	return truncateRunes(s, maxLen)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
