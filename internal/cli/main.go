package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/GICristian/YouTube-Clip-Generator/internal/logging"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	var verbose bool
	root := &cobra.Command{
		Use:          "clipgen <transcript.json>",
		Short:        "Select, score and title short clips from a video transcript",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().String("out", "out", "Output directory")
	root.Flags().String("order", "chronological", "Clip ordering: chronological or top")
	root.Flags().String("config", "", "Path to YAML config with engine overrides")
	root.Flags().Int64("seed", 0, "Scoring seed (same seed, same scores)")
	root.Flags().Float64("duration", 0, "Total video duration in seconds (overrides the transcript)")
	root.Flags().Int("concurrency", 0, "Parallel title generations")
	root.Flags().Bool("no-ai", false, "Skip AI titles and use fallback templates")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
