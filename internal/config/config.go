package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/scoring"
	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/timeline"
	"github.com/GICristian/YouTube-Clip-Generator/internal/domain/titles"
)

// Config carries every engine tuning knob. Defaults match the documented
// selection and scoring contract; a YAML file overrides individual fields.
type Config struct {
	Concurrency int    `yaml:"concurrency"` // parallel title generations
	Order       string `yaml:"order"`       // chronological | top

	Segmenter timeline.Config `yaml:"segmenter"`
	Scoring   scoring.Config  `yaml:"scoring"`
	Titles    titles.Config   `yaml:"titles"`
}

func Default() *Config {
	return &Config{
		Concurrency: 4,
		Order:       "chronological",
		Segmenter:   timeline.DefaultConfig(),
		Scoring:     scoring.DefaultConfig(),
		Titles:      titles.DefaultConfig(),
	}
}

// Load reads YAML overrides on top of defaults. An empty path searches the
// usual locations and falls back to pure defaults when nothing is found; an
// explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = findConfigFile()
	}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Concurrency <= 0 {
		return fmt.Errorf("concurrency must be > 0")
	}
	if c.Order != "chronological" && c.Order != "top" {
		return fmt.Errorf("order must be chronological or top, got %q", c.Order)
	}
	if len(c.Segmenter.Brackets) == 0 {
		return fmt.Errorf("segmenter needs at least one duration bracket")
	}
	for i, b := range c.Segmenter.Brackets {
		if b.DivisorSec <= 0 {
			return fmt.Errorf("bracket %d: divisor must be > 0", i)
		}
		if b.MinClips <= 0 || b.MaxClips < b.MinClips {
			return fmt.Errorf("bracket %d: clip bounds [%d,%d] are invalid", i, b.MinClips, b.MaxClips)
		}
	}
	if c.Segmenter.MinWindowSec <= 0 || c.Segmenter.MaxWindowSec < c.Segmenter.MinWindowSec {
		return fmt.Errorf("window bounds [%.0f,%.0f] are invalid", c.Segmenter.MinWindowSec, c.Segmenter.MaxWindowSec)
	}
	for i, b := range c.Scoring.Position {
		if b.To <= b.From || b.MaxBonus < b.MinBonus {
			return fmt.Errorf("position bonus %d is invalid", i)
		}
	}
	if c.Titles.MaxTitleLen <= 0 {
		return fmt.Errorf("max title length must be > 0")
	}
	if len(c.Titles.Templates) == 0 {
		return fmt.Errorf("titles need at least one fallback template")
	}
	return nil
}

func findConfigFile() string {
	for _, path := range []string{"./clipgen.yaml", "./clipgen.yml"} {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
