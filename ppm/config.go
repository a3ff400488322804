package ppm

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClusterConfig describes one cluster in the topology file.
type ClusterConfig struct {
	Name     string `yaml:"name"`
	MinCore  int    `yaml:"min_core"`
	MaxCore  int    `yaml:"max_core"`
	FreqsKHz []int  `yaml:"freqs_khz"`
}

// PolicyConfig holds the sysboost settings of the topology file.
// A nil Enabled means "not set in YAML" and leaves the policy enabled.
type PolicyConfig struct {
	Enabled *bool  `yaml:"enabled"`
	Trace   bool   `yaml:"trace"`
	Mode    string `yaml:"mode"`
}

// TopologyConfig is the full topology file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type TopologyConfig struct {
	Clusters []ClusterConfig `yaml:"clusters"`
	Policy   PolicyConfig    `yaml:"policy"`
}

// DefaultTopologyConfig returns a two-cluster 4+4 layout.
func DefaultTopologyConfig() *TopologyConfig {
	return &TopologyConfig{
		Clusters: []ClusterConfig{
			{
				Name:     "LL",
				MinCore:  1,
				MaxCore:  4,
				FreqsKHz: []int{1547000, 1416000, 1286000, 1117000, 949000, 806000, 650000, 442000},
			},
			{
				Name:     "L",
				MinCore:  0,
				MaxCore:  4,
				FreqsKHz: []int{2158000, 2010000, 1858000, 1599000, 1365000, 1183000, 988000, 689000},
			},
		},
	}
}

// LoadTopologyConfig reads and strictly parses a YAML topology file.
func LoadTopologyConfig(path string) (*TopologyConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading topology config: %w", err)
	}
	// Strict field checking: typos must cause errors.
	var cfg TopologyConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing topology config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating topology config: %w", err)
	}
	return &cfg, nil
}

// Validate checks cluster ranges and frequency tables.
func (c *TopologyConfig) Validate() error {
	if len(c.Clusters) == 0 {
		return fmt.Errorf("at least one cluster is required")
	}
	seen := make(map[string]bool, len(c.Clusters))
	for i, cl := range c.Clusters {
		if cl.Name != "" {
			if seen[cl.Name] {
				return fmt.Errorf("cluster %d: duplicate name %q", i, cl.Name)
			}
			seen[cl.Name] = true
		}
		if cl.MinCore < 0 {
			return fmt.Errorf("cluster %d: min_core must be non-negative, got %d", i, cl.MinCore)
		}
		if cl.MaxCore < cl.MinCore {
			return fmt.Errorf("cluster %d: max_core %d is below min_core %d", i, cl.MaxCore, cl.MinCore)
		}
		if len(cl.FreqsKHz) == 0 {
			return fmt.Errorf("cluster %d: freqs_khz must not be empty", i)
		}
		for _, f := range cl.FreqsKHz {
			if f <= 0 {
				return fmt.Errorf("cluster %d: frequencies must be positive, got %d", i, f)
			}
		}
	}
	if c.Policy.Mode != "" {
		if _, err := ParseMode(c.Policy.Mode); err != nil {
			return err
		}
	}
	return nil
}

// PolicyEnabled reports the configured enable state, defaulting to true.
func (c *TopologyConfig) PolicyEnabled() bool {
	return c.Policy.Enabled == nil || *c.Policy.Enabled
}
