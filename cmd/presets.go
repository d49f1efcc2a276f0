package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lifsim/lifsim/sim"
)

// Preset is a named parameter set in presets.yaml.
type Preset struct {
	Description string        `yaml:"description" json:"description"`
	Model       sim.ModelSpec `yaml:"model" json:"model"`
}

// PresetFile represents the full presets.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type PresetFile struct {
	Version string            `yaml:"version"`
	Presets map[string]Preset `yaml:"presets"`
}

// LoadPresets reads and strictly parses a presets file. Every preset must hold
// valid model parameters.
func LoadPresets(path string) (*PresetFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading presets: %w", err)
	}
	return ParsePresets(data)
}

// ParsePresets decodes presets YAML with strict field checking.
func ParsePresets(data []byte) (*PresetFile, error) {
	var f PresetFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing presets: %w", err)
	}
	if f.Version != "1" {
		return nil, fmt.Errorf("unsupported presets version %q; valid: 1", f.Version)
	}
	for _, name := range f.Names() {
		if err := f.Presets[name].Params().Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
	}
	return &f, nil
}

// Params returns the preset's model parameters.
func (p Preset) Params() sim.ModelParameters {
	return p.Model.Params()
}

// Names returns the preset names in sorted order.
func (f *PresetFile) Names() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns the named preset.
func (f *PresetFile) Get(name string) (Preset, error) {
	p, ok := f.Presets[name]
	if !ok {
		return Preset{}, fmt.Errorf("unknown preset %q; valid: %s", name, strings.Join(f.Names(), ", "))
	}
	return p, nil
}

// presetsCmd lists the presets file
var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the named parameter presets",
	Run: func(cmd *cobra.Command, args []string) {
		f, err := LoadPresets(presetsPath)
		if err != nil {
			logrus.Fatalf("Loading presets: %v", err)
		}
		if err := writePresets(cmd.OutOrStdout(), f, outputFormat); err != nil {
			logrus.Fatalf("Writing presets: %v", err)
		}
	},
}

func writePresets(w io.Writer, f *PresetFile, format string) error {
	switch format {
	case "json":
		return writeJSON(w, f.Presets)
	case "text":
		var b strings.Builder
		for _, name := range f.Names() {
			p := f.Presets[name]
			fmt.Fprintf(&b, "%-20s %s\n", name, p.Params())
			if p.Description != "" {
				fmt.Fprintf(&b, "%-20s %s\n", "", p.Description)
			}
		}
		_, err := io.WriteString(w, b.String())
		return err
	}
	return errUnknownFormat(format)
}

func init() {
	presetsCmd.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, json)")
	rootCmd.AddCommand(presetsCmd)
}
