// Package config holds the run configuration: the six input paths, the
// output directory and the optional manifest database. Values come from
// an optional YAML file merged with command-line flags; flags win.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is one generator run.
type Config struct {
	Inputs   Inputs `yaml:"inputs"`
	OutDir   string `yaml:"out_dir"`
	Manifest string `yaml:"manifest"` // SQLite run catalog; empty disables it
	Verbose  bool   `yaml:"verbose"`
}

// Inputs are the required input files.
type Inputs struct {
	CostTuples     string `yaml:"cost_tuples"`
	IncidentTuples string `yaml:"incident_tuples"`
	Ontology       string `yaml:"ontology"`
	CQSet          string `yaml:"cq_set"`
	ShapeSet       string `yaml:"shape_set"`
	Weights        string `yaml:"weights"`
}

// Default returns the zero configuration with the conventional output
// directory.
func Default() *Config {
	return &Config{OutDir: "artifacts"}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that every required input exists before the pipeline
// starts; a missing input is a configuration error and nothing may be
// written.
func (c *Config) Validate() error {
	required := []struct{ name, path string }{
		{"cost-tuple table", c.Inputs.CostTuples},
		{"incident-tuple table", c.Inputs.IncidentTuples},
		{"ontology", c.Inputs.Ontology},
		{"cq query set", c.Inputs.CQSet},
		{"shacl shape set", c.Inputs.ShapeSet},
		{"objective weight table", c.Inputs.Weights},
	}
	for _, in := range required {
		if in.path == "" {
			return fmt.Errorf("%s path is not set", in.name)
		}
		if _, err := os.Stat(in.path); err != nil {
			return fmt.Errorf("%s: %w", in.name, err)
		}
	}
	if c.OutDir == "" {
		return fmt.Errorf("output directory is not set")
	}
	return nil
}

// Paths lists the input files in a fixed order for digesting.
func (c *Config) Paths() []string {
	return []string{
		c.Inputs.CostTuples,
		c.Inputs.IncidentTuples,
		c.Inputs.Ontology,
		c.Inputs.CQSet,
		c.Inputs.ShapeSet,
		c.Inputs.Weights,
	}
}
