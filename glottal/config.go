package glottal

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/RyanBlaney/sonido-gci/algorithms/common"
)

// Config holds the tunable constants of the instant finder. The defaults
// reproduce the reference behaviour and should only be changed knowingly.
type Config struct {
	// Margin in seconds added to both ends of each voiced region
	FrameWidth float64 `json:"frame_width" yaml:"frame_width"`

	// Octave correction
	MismatchRatio    float64 `json:"mismatch_ratio" yaml:"mismatch_ratio"`         // adjacent period ratio that triggers a check
	MergeFraction    float64 `json:"merge_fraction" yaml:"merge_fraction"`         // merge when cost < median * fraction
	SplitRatio       float64 `json:"split_ratio" yaml:"split_ratio"`               // one insert when period > median * ratio
	TripleSplitRatio float64 `json:"triple_split_ratio" yaml:"triple_split_ratio"` // two inserts when period > median * ratio
	WindowRadius     int     `json:"window_radius" yaml:"window_radius"`           // candidates either side used for the median

	// Refinement against the raw waveform
	SearchRadius int `json:"search_radius" yaml:"search_radius"` // samples searched each way

	// Zero-frequency resonator
	ZFRWindowPeriods float64 `json:"zfr_window_periods" yaml:"zfr_window_periods"`
	ZFRPasses        int     `json:"zfr_passes" yaml:"zfr_passes"`

	// Number of regions processed concurrently; 0 or 1 runs sequentially
	Workers int `json:"workers" yaml:"workers"`
}

// DefaultConfig returns the reference settings
func DefaultConfig() *Config {
	return &Config{
		FrameWidth:       0.1,
		MismatchRatio:    1.5,
		MergeFraction:    0.5,
		SplitRatio:       1.66,
		TripleSplitRatio: 2.5,
		WindowRadius:     3,
		SearchRadius:     100,
		ZFRWindowPeriods: 1.5,
		ZFRPasses:        2,
		Workers:          1,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks that every setting is usable
func (c *Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"mismatch_ratio", c.MismatchRatio},
		{"merge_fraction", c.MergeFraction},
		{"split_ratio", c.SplitRatio},
		{"triple_split_ratio", c.TripleSplitRatio},
		{"zfr_window_periods", c.ZFRWindowPeriods},
	}
	for _, p := range positive {
		if !common.IsFinite(p.value) || p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %v", p.name, p.value)
		}
	}

	if !common.IsFinite(c.FrameWidth) || c.FrameWidth < 0 {
		return fmt.Errorf("frame_width must be non-negative, got %v", c.FrameWidth)
	}
	if c.WindowRadius < 1 {
		return fmt.Errorf("window_radius must be at least 1, got %d", c.WindowRadius)
	}
	if c.SearchRadius < 0 {
		return fmt.Errorf("search_radius must be non-negative, got %d", c.SearchRadius)
	}
	if c.ZFRPasses < 0 {
		return fmt.Errorf("zfr_passes must be non-negative, got %d", c.ZFRPasses)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}

	return nil
}
