package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Preset is one named parameter set in presets.yaml.
// Pointer fields are optional; nil leaves the flag default in place.
type Preset struct {
	Size          *int     `yaml:"size"`
	U             *float64 `yaml:"u"`
	T             *float64 `yaml:"t"`
	Electrons     *int     `yaml:"electrons"`
	FieldStrength *float64 `yaml:"field_strength"`
	Init          *string  `yaml:"init"`
	Steps         *int64   `yaml:"steps"`
	Seed          *int64   `yaml:"seed"`
}

// PresetsConfig represents the full presets.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type PresetsConfig struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// loadPresets parses a presets file. Unknown keys are errors so typos
// surface instead of silently falling back to defaults.
func loadPresets(path string) (PresetsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PresetsConfig{}, fmt.Errorf("reading presets file: %w", err)
	}
	var cfg PresetsConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return PresetsConfig{}, fmt.Errorf("parsing presets YAML: %w", err)
	}
	return cfg, nil
}

// applyPreset copies preset values into the flag variables the user did not
// set explicitly.
func applyPreset(cmd *cobra.Command, p Preset) {
	changed := cmd.Flags().Changed
	if p.Size != nil && !changed("size") {
		latticeSize = *p.Size
	}
	if p.U != nil && !changed("u") {
		onSiteRepulsion = *p.U
	}
	if p.T != nil && !changed("t") {
		hopping = *p.T
	}
	if p.Electrons != nil && !changed("electrons") {
		requestedElectrons = *p.Electrons
	}
	if p.FieldStrength != nil && !changed("field") {
		fieldStrength = *p.FieldStrength
	}
	if p.Init != nil && !changed("init") {
		initPolicy = *p.Init
	}
	if p.Steps != nil && !changed("steps") {
		numSteps = *p.Steps
	}
	if p.Seed != nil && !changed("seed") {
		seed = *p.Seed
	}
}
