package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/GICristian/YouTube-Clip-Generator/internal/config"
	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/titles"
	"github.com/GICristian/YouTube-Clip-Generator/internal/engine"
	"github.com/GICristian/YouTube-Clip-Generator/internal/logging"
	"github.com/GICristian/YouTube-Clip-Generator/internal/ports"
	"github.com/GICristian/YouTube-Clip-Generator/internal/ports/adapters/openrouter"
	"github.com/GICristian/YouTube-Clip-Generator/internal/ports/adapters/transcriptfile"
	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

type Config struct {
	TranscriptPath string
	OutDir         string
	ConfigPath     string

	Order       string
	Seed        int64
	Concurrency int
	DurationSec float64 // overrides the transcript's total duration when > 0
	NoAI        bool

	OpenRouterAPIKey       string
	OpenRouterModel        string
	OpenRouterBaseURL      string
	OpenRouterAllowedHosts []string
}

func (c Config) Validate() error {
	if c.TranscriptPath == "" {
		return errors.New("transcript path is empty")
	}
	if _, err := os.Stat(c.TranscriptPath); err != nil {
		return fmt.Errorf("stat transcript: %w", err)
	}
	if _, err := engine.ParseOrder(c.Order); err != nil {
		return err
	}
	if c.DurationSec < 0 {
		return errors.New("duration must be >= 0")
	}
	if !c.NoAI && c.OpenRouterAPIKey != "" {
		return openrouter.ValidateBaseURL(c.OpenRouterBaseURL, c.OpenRouterAllowedHosts)
	}
	return nil
}

func Run(ctx context.Context, cfg Config) error {
	log := logging.WithComponent("pipeline")

	engCfg, err := config.Load(cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.Seed != 0 {
		engCfg.Scoring.Seed = cfg.Seed
	}
	if cfg.Concurrency > 0 {
		engCfg.Concurrency = cfg.Concurrency
	}
	if cfg.Order != "" {
		engCfg.Order = cfg.Order
	}
	order, err := engine.ParseOrder(engCfg.Order)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var src ports.TranscriptSource = transcriptfile.New()
	tr, err := src.Load(ctx, cfg.TranscriptPath)
	if err != nil {
		return err
	}
	if cfg.DurationSec > 0 {
		tr.Duration = cfg.DurationSec
	}
	log.Info().Str("transcript", cfg.TranscriptPath).Float64("duration_sec", tr.Duration).Int("spans", len(tr.Segments)).Msg("transcript loaded")

	var textGen ports.TextGenerator
	switch {
	case cfg.NoAI:
		log.Info().Msg("ai titles disabled, using fallback templates")
	case cfg.OpenRouterAPIKey == "":
		log.Warn().Msg("OPENROUTER_API_KEY is not set, titles fall back to templates")
	default:
		textGen = openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL)
	}

	titler := titles.New(engCfg.Titles, textGen, logging.WithComponent("titles"))
	eng := engine.New(engCfg.Segmenter, engCfg.Scoring, titler, engine.Options{
		Order:            order,
		TitleConcurrency: engCfg.Concurrency,
	}, logging.WithComponent("engine"))

	clips, err := eng.BuildClips(ctx, tr)
	if err != nil {
		return err
	}

	outRoot := cfg.OutDir
	if outRoot == "" {
		outRoot = "out"
	}
	runID := uuid.NewString()
	runOutDir := buildRunOutDir(outRoot, cfg.TranscriptPath, time.Now().UTC(), runID)
	if err := os.MkdirAll(runOutDir, 0o755); err != nil {
		return err
	}

	m := buildManifest(runID, cfg.TranscriptPath, tr.Duration, string(order), time.Now().UTC(), clips)
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	manifestPath := filepath.Join(runOutDir, "manifest.json")
	if err := os.WriteFile(manifestPath, b, 0o644); err != nil {
		return err
	}
	log.Info().Int("clips", len(m.Clips)).Str("manifest", manifestPath).Msg("manifest written")
	return nil
}

func buildManifest(runID, input string, durationSec float64, order string, generatedAt time.Time, clips []types.TitledClip) types.Manifest {
	m := types.Manifest{
		RunID:       runID,
		Input:       input,
		DurationSec: durationSec,
		GeneratedAt: generatedAt,
		Order:       order,
		Clips:       make([]types.ManifestClip, 0, len(clips)),
	}
	for i, c := range clips {
		m.Clips = append(m.Clips, types.ManifestClip{
			ID:          fmt.Sprintf("%03d", i+1),
			StartSec:    c.Start.Seconds(),
			EndSec:      c.End.Seconds(),
			DurationSec: c.Duration().Seconds(),
			Position:    c.Position,
			Score:       c.Score,
			Breakdown:   c.Breakdown,
			Title:       c.Title,
			TitleSource: string(c.Source),
			Text:        c.Text,
		})
	}
	return m
}

func buildRunOutDir(outRoot, transcriptPath string, now time.Time, runID string) string {
	name := strings.TrimSuffix(filepath.Base(transcriptPath), filepath.Ext(transcriptPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "input"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := strings.ReplaceAll(runID, "-", "")
	if len(suffix) > 6 {
		suffix = suffix[:6]
	}
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
