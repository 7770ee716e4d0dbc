package main

import (
	"fmt"
	"os"

	"github.com/surfbryce/motion/spring"
	"gopkg.in/yaml.v3"
)

// Preset is one named spring tuning. Frequency is in Hz.
type Preset struct {
	Name      string  `yaml:"name"`
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping"`
}

type presetFile struct {
	Presets []Preset `yaml:"presets"`
}

func defaultPresets() []Preset {
	return []Preset{
		{Name: "smooth", Frequency: 2, Damping: 1},
		{Name: "snappy", Frequency: 5, Damping: 0.65},
		{Name: "bouncy", Frequency: 4, Damping: 0.25},
		{Name: "molasses", Frequency: 1.5, Damping: 4},
		{Name: "wobbly", Frequency: 8, Damping: 0.08},
	}
}

// loadPresets reads a YAML preset file and proves every entry can build a
// spring before the UI ever sees it. Negative pairs are rejected even though
// the integrator accepts some of them: the tuning keys only step through
// non-negative values.
func loadPresets(path string) ([]Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file presetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(file.Presets) == 0 {
		return nil, fmt.Errorf("%s: no presets defined", path)
	}

	for i, p := range file.Presets {
		if p.Name == "" {
			return nil, fmt.Errorf("%s: preset %d has no name", path, i+1)
		}
		if _, err := spring.New(0, p.Frequency, p.Damping); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		if p.Frequency < 0 || p.Damping < 0 {
			return nil, fmt.Errorf("preset %q: frequency and damping must be non-negative", p.Name)
		}
	}
	return file.Presets, nil
}
