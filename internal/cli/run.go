package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/GICristian/YouTube-Clip-Generator/internal/pipeline"
)

func run(cmd *cobra.Command, transcript string) error {
	outDir, _ := cmd.Flags().GetString("out")
	order, _ := cmd.Flags().GetString("order")
	configPath, _ := cmd.Flags().GetString("config")
	seed, _ := cmd.Flags().GetInt64("seed")
	durationSec, _ := cmd.Flags().GetFloat64("duration")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	noAI, _ := cmd.Flags().GetBool("no-ai")

	absIn, err := filepath.Abs(transcript)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		TranscriptPath: absIn,
		OutDir:         outDir,
		ConfigPath:     configPath,
		Order:          order,
		Seed:           seed,
		Concurrency:    concurrency,
		DurationSec:    durationSec,
		NoAI:           noAI,

		OpenRouterAPIKey:       os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterModel:        getenvDefault("OPENROUTER_MODEL", "deepseek/deepseek-r1:free"),
		OpenRouterBaseURL:      getenvDefault("OPENROUTER_BASE_URL", "https://openrouter.ai"),
		OpenRouterAllowedHosts: splitHosts(os.Getenv("OPENROUTER_ALLOWED_HOSTS")),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return pipeline.Run(ctx, cfg)
}

func getenvDefault(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' }) {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
