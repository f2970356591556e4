package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("out", "/tmp/My Cool.Talk.json", now, "abcdef12-3456-7890-abcd-ef1234567890")
	base := filepath.Base(got)
	if filepath.Dir(got) != "out" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if base != "my-cool-talk-20260212-103045Z-abcdef" {
		t.Fatalf("unexpected run dir format: %s", base)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Talk  ": "my-cool-talk",
		"___":              "",
		"abc123":           "abc123",
		"Name (v2)!":       "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	transcript := writeTestTranscript(t, 400, 20)

	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "empty path",
			cfg:     Config{},
			wantErr: "transcript path is empty",
		},
		{
			name:    "missing file",
			cfg:     Config{TranscriptPath: "/does/not/exist.json"},
			wantErr: "stat transcript",
		},
		{
			name:    "unknown order",
			cfg:     Config{TranscriptPath: transcript, Order: "best"},
			wantErr: "unknown order",
		},
		{
			name:    "negative duration",
			cfg:     Config{TranscriptPath: transcript, DurationSec: -1},
			wantErr: "duration must be >= 0",
		},
		{
			name: "bad base url with key",
			cfg: Config{
				TranscriptPath:    transcript,
				OpenRouterAPIKey:  "k",
				OpenRouterBaseURL: "http://openrouter.ai",
			},
			wantErr: "https is required",
		},
		{
			name: "no-ai skips base url validation",
			cfg: Config{
				TranscriptPath:    transcript,
				NoAI:              true,
				OpenRouterAPIKey:  "k",
				OpenRouterBaseURL: "http://openrouter.ai",
			},
		},
		{
			name: "no key skips base url validation",
			cfg:  Config{TranscriptPath: transcript, OpenRouterBaseURL: "http://openrouter.ai"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

// Full fallback-only run: load transcript, build clips, write manifest.
func TestRun_FallbackOnly(t *testing.T) {
	transcript := writeTestTranscript(t, 400, 20)
	outDir := t.TempDir()

	cfg := Config{
		TranscriptPath: transcript,
		OutDir:         outDir,
		Seed:           42,
		NoAI:           true,
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if err := Run(context.Background(), cfg); err != nil {
		t.Fatalf("run: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(outDir, "*", "manifest.json"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one manifest, got %v (%v)", matches, err)
	}

	b, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("parse manifest: %v", err)
	}

	if m.RunID == "" {
		t.Fatalf("manifest missing run id")
	}
	if m.Order != "chronological" {
		t.Fatalf("order = %q", m.Order)
	}
	if len(m.Clips) != 5 {
		t.Fatalf("expected 5 clips for a 400s timeline, got %d", len(m.Clips))
	}
	for i, c := range m.Clips {
		if c.ID != fmt.Sprintf("%03d", i+1) {
			t.Fatalf("clip %d has id %q", i, c.ID)
		}
		if c.Title == "" || c.TitleSource != "fallback" {
			t.Fatalf("clip %d: title %q source %q", i, c.Title, c.TitleSource)
		}
		sum := 0
		for _, e := range c.Breakdown {
			sum += e.Delta
		}
		if sum != c.Score {
			t.Fatalf("clip %d breakdown sums to %d, score is %d", i, sum, c.Score)
		}
		if i > 0 && c.StartSec < m.Clips[i-1].EndSec {
			t.Fatalf("clips %d and %d overlap", i-1, i)
		}
	}
}

func TestRun_SegmentationFailureProducesNoOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")
	if err := os.WriteFile(path, []byte(`{"duration": 100, "segments": []}`), 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	outDir := t.TempDir()

	err := Run(context.Background(), Config{TranscriptPath: path, OutDir: outDir, NoAI: true})
	if err == nil {
		t.Fatalf("expected segmentation error")
	}
	matches, _ := filepath.Glob(filepath.Join(outDir, "*", "manifest.json"))
	if len(matches) != 0 {
		t.Fatalf("expected no manifest on failed run, got %v", matches)
	}
}

func writeTestTranscript(t *testing.T, totalSec float64, n int) string {
	t.Helper()

	type span struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	}
	spacing := totalSec / float64(n)
	spans := make([]span, 0, n)
	for i := 0; i < n; i++ {
		start := float64(i) * spacing
		spans = append(spans, span{Start: start, End: start + 2, Text: fmt.Sprintf("span %d", i)})
	}
	b, err := json.Marshal(map[string]any{"duration": totalSec, "segments": spans})
	if err != nil {
		t.Fatalf("marshal transcript: %v", err)
	}
	path := filepath.Join(t.TempDir(), "talk.json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}
