package titles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/GICristian/YouTube-Clip-Generator/internal/ports"
	"github.com/GICristian/YouTube-Clip-Generator/internal/types"
)

type fakeTextGen struct {
	res   ports.TextResult
	err   error
	calls int
}

func (f *fakeTextGen) Generate(_ context.Context, _ ports.TextRequest) (ports.TextResult, error) {
	f.calls++
	return f.res, f.err
}

func clip(d time.Duration, pos float64) types.ScoredClip {
	return types.ScoredClip{
		Window: types.Window{Start: 0, End: d, Position: pos, Text: "some covered text"},
		Score:  70,
	}
}

func TestGenerate_UsesContentField(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), &fakeTextGen{res: ports.TextResult{Content: "  Great Title  "}}, zerolog.Nop())
	tc, err := gen.Generate(context.Background(), clip(40*time.Second, 0.1), 1, 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tc.Source != types.TitleSourceAI {
		t.Fatalf("source = %q, want ai", tc.Source)
	}
	if tc.Title != "Great Title" {
		t.Fatalf("title = %q", tc.Title)
	}
}

func TestGenerate_FallsBackToReasoningField(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), &fakeTextGen{
		res: ports.TextResult{Content: "", Reasoning: "Black holes explained"},
	}, zerolog.Nop())

	tc, err := gen.Generate(context.Background(), clip(40*time.Second, 0.1), 1, 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if tc.Source != types.TitleSourceAI {
		t.Fatalf("source = %q, want ai (reasoning text is an AI result)", tc.Source)
	}
	if tc.Title != "Black holes explained" {
		t.Fatalf("title = %q", tc.Title)
	}
}

func TestGenerate_TruncatesLongAITitle(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("verylongword ", 30)
	gen := New(DefaultConfig(), &fakeTextGen{res: ports.TextResult{Content: long}}, zerolog.Nop())

	tc, err := gen.Generate(context.Background(), clip(40*time.Second, 0.1), 1, 5)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if n := len([]rune(tc.Title)); n == 0 || n > 120 {
		t.Fatalf("title length %d outside [1,120]", n)
	}
}

func TestGenerate_TransientFailuresResolveToFallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		fake *fakeTextGen
	}{
		{"transport error", &fakeTextGen{err: errors.New("openrouter status 503")}},
		{"timeout", &fakeTextGen{err: errors.New("openrouter timeout after 30s")}},
		{"empty content and reasoning", &fakeTextGen{res: ports.TextResult{Content: "   ", Reasoning: "\n\t"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := New(DefaultConfig(), tt.fake, zerolog.Nop())
			tc, err := gen.Generate(context.Background(), clip(45*time.Second, 0.3), 2, 5)
			if err != nil {
				t.Fatalf("transient failure must not surface: %v", err)
			}
			if tc.Source != types.TitleSourceFallback {
				t.Fatalf("source = %q, want fallback", tc.Source)
			}
			if tc.Title == "" || len([]rune(tc.Title)) > 120 {
				t.Fatalf("bad fallback title %q", tc.Title)
			}
		})
	}
}

// With the AI collaborator disabled, a 5-clip run gets 5 distinct fallback
// titles from the 10-template rotation, and adjacent clips never share a
// template.
func TestGenerate_FallbackRotation(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), nil, zerolog.Nop())
	seen := map[string]bool{}
	var prev string
	for i := 1; i <= 5; i++ {
		tc, err := gen.Generate(context.Background(), clip(40*time.Second, 0.5), i, 5)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if tc.Source != types.TitleSourceFallback {
			t.Fatalf("clip %d source = %q, want fallback", i, tc.Source)
		}
		if tc.Title == "" {
			t.Fatalf("clip %d has empty title", i)
		}
		if tc.Title == prev {
			t.Fatalf("adjacent clips %d and %d share a title: %q", i-1, i, tc.Title)
		}
		if seen[tc.Title] {
			t.Fatalf("duplicate fallback title in 5-clip run: %q", tc.Title)
		}
		seen[tc.Title] = true
		prev = tc.Title
	}
}

func TestFallbackTitle_RotationWrapsAroundTemplates(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), nil, zerolog.Nop())
	first := gen.fallbackTitle(1, 40*time.Second)
	wrapped := gen.fallbackTitle(11, 40*time.Second)
	if first != wrapped {
		t.Fatalf("index 11 should reuse template 1: %q vs %q", first, wrapped)
	}
	if first == gen.fallbackTitle(2, 40*time.Second) {
		t.Fatalf("consecutive indices must use different templates")
	}
}

func TestFallbackTitle_InterpolatesDuration(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), nil, zerolog.Nop())
	got := gen.fallbackTitle(1, 42*time.Second)
	if !strings.Contains(got, "42") {
		t.Fatalf("expected duration in title, got %q", got)
	}
}

func TestGenerate_CancelledContextSurfaces(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := New(DefaultConfig(), &fakeTextGen{res: ports.TextResult{Content: "x"}}, zerolog.Nop())
	_, err := gen.Generate(ctx, clip(40*time.Second, 0.1), 1, 5)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerate_Stats(t *testing.T) {
	t.Parallel()

	fake := &fakeTextGen{res: ports.TextResult{Content: "ok"}}
	gen := New(DefaultConfig(), fake, zerolog.Nop())

	if _, err := gen.Generate(context.Background(), clip(40*time.Second, 0.1), 1, 3); err != nil {
		t.Fatalf("generate: %v", err)
	}
	fake.res = ports.TextResult{}
	fake.err = errors.New("boom")
	if _, err := gen.Generate(context.Background(), clip(40*time.Second, 0.1), 2, 3); err != nil {
		t.Fatalf("generate: %v", err)
	}

	st := gen.Stats()
	if st.AITitles != 1 || st.AIFailures != 1 || st.FallbackTitles != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestBuildPrompt_CarriesPositionRole(t *testing.T) {
	t.Parallel()

	gen := New(DefaultConfig(), nil, zerolog.Nop())
	tests := []struct {
		pos  float64
		want string
	}{
		{0.1, "hook"},
		{0.3, "insight"},
		{0.6, "turning point"},
		{0.9, "call to action"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("pos=%.1f", tt.pos), func(t *testing.T) {
			p := gen.buildPrompt(clip(40*time.Second, tt.pos), 1, 4)
			if !strings.Contains(p, tt.want) {
				t.Fatalf("prompt for position %.1f missing %q:\n%s", tt.pos, tt.want, p)
			}
			if !strings.Contains(p, "unique") {
				t.Fatalf("prompt missing uniqueness instruction")
			}
		})
	}
}
