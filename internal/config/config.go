// Package config loads the YAML settings that map stroke colours to
// machining operations.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"svgcam/internal/job"
	"svgcam/internal/svgfile"
)

var ErrInvalid = errors.New("config: invalid")

// Config is the file format. Properties given under defaults overlay
// job.DefaultProperties; properties given on a rule overlay the defaults.
type Config struct {
	// Workers is the number of operations prepared in parallel; 0 uses
	// every CPU.
	Workers int `yaml:"workers"`
	// ConstructionColor marks strokes that are never cut. Empty disables it.
	ConstructionColor string `yaml:"construction_color"`
	// DefaultKind applies to strokes no rule matches. Empty skips them.
	DefaultKind string         `yaml:"default_kind"`
	Defaults    job.Properties `yaml:"defaults"`
	Operations  []Rule         `yaml:"operations"`

	rules []rule
}

// Rule selects the operation for one stroke colour.
type Rule struct {
	Stroke     string    `yaml:"stroke"`
	Kind       string    `yaml:"kind"`
	Properties yaml.Node `yaml:"properties"`
}

type rule struct {
	stroke string
	kind   job.Kind
	props  job.Properties
}

func Default() *Config {
	return &Config{
		ConstructionColor: "#0000ff",
		DefaultKind:       job.ProfileOutside.String(),
		Defaults:          job.DefaultProperties(),
	}
}

// Load reads and validates the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML document over Default.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse YAML: %w", err)
	}
	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolve validates the document and computes the per-rule properties.
func (c *Config) resolve() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative, got %d", ErrInvalid, c.Workers)
	}
	c.ConstructionColor = svgfile.NormalizeColor(c.ConstructionColor)
	if c.DefaultKind != "" {
		if _, err := job.ParseKind(c.DefaultKind); err != nil {
			return fmt.Errorf("%w: default_kind: %w", ErrInvalid, err)
		}
	}

	c.rules = c.rules[:0]
	seen := make(map[string]bool)
	for i, r := range c.Operations {
		stroke := svgfile.NormalizeColor(r.Stroke)
		if stroke == "" {
			return fmt.Errorf("%w: operations[%d]: stroke is required", ErrInvalid, i)
		}
		if seen[stroke] {
			return fmt.Errorf("%w: operations[%d]: duplicate stroke %s", ErrInvalid, i, stroke)
		}
		seen[stroke] = true

		kind, err := job.ParseKind(r.Kind)
		if err != nil {
			return fmt.Errorf("%w: operations[%d]: %w", ErrInvalid, i, err)
		}
		props := c.Defaults
		if r.Properties.Kind != 0 {
			if err := r.Properties.Decode(&props); err != nil {
				return fmt.Errorf("%w: operations[%d].properties: %w", ErrInvalid, i, err)
			}
		}
		c.rules = append(c.rules, rule{stroke: stroke, kind: kind, props: props})
	}
	return nil
}

// Classify returns the operation kind and properties for a stroke colour.
// It reports false for construction geometry and for strokes that match
// no rule when there is no default kind.
func (c *Config) Classify(stroke string) (job.Kind, job.Properties, bool) {
	stroke = svgfile.NormalizeColor(stroke)
	if c.ConstructionColor != "" && stroke == c.ConstructionColor {
		return 0, job.Properties{}, false
	}
	for _, r := range c.rules {
		if r.stroke == stroke {
			return r.kind, r.props, true
		}
	}
	if c.DefaultKind == "" {
		return 0, job.Properties{}, false
	}
	kind, err := job.ParseKind(c.DefaultKind)
	if err != nil {
		return 0, job.Properties{}, false
	}
	return kind, c.Defaults, true
}
