// Package config provides YAML-based configuration loading for building a
// qdpf.QuadtreeMapX: grid dimensions, the distance metric to use, the set
// of agent sizes and terrain masks to instantiate, and the leaf-size
// policy. It never imports qdpf's pathfinder types directly beyond the
// settings struct — qdpf.NewQuadtreeMapX itself has no dependency on this
// package.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/qdpf"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds the parameters needed to build a qdpf.QuadtreeMapX.
type Config struct {
	Grid       GridConfig       `yaml:"grid"`
	AgentSizes []int            `yaml:"agent_sizes"`
	Terrains   []TerrainConfig  `yaml:"terrains"`
	LeafPolicy LeafPolicyConfig `yaml:"leaf_policy"`
}

// GridConfig describes the grid extents and distance metric.
type GridConfig struct {
	Width    int    `yaml:"width"`
	Height   int    `yaml:"height"`
	Distance string `yaml:"distance"` // "euclidean" or "chebyshev"
}

// TerrainConfig names one terrain mask bit this deployment recognizes.
type TerrainConfig struct {
	Name string `yaml:"name"`
	Mask int    `yaml:"mask"`
}

// LeafPolicyConfig caps the side of an obstacle-free leaf.
type LeafPolicyConfig struct {
	MaxNodeWidth  int `yaml:"max_node_width"`
	MaxNodeHeight int `yaml:"max_node_height"`
	Step          int `yaml:"step"`
}

// Load loads configuration from a YAML file, merging it over the embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// Distance resolves the configured metric name to a qdpf.DistanceFunc.
// Unrecognized names fall back to Chebyshev.
func (c *Config) Distance() qdpf.DistanceFunc {
	if c.Grid.Distance == "euclidean" {
		return qdpf.EuclideanDistance
	}
	return qdpf.ChebyshevDistance
}

// TerrainMasks returns the configured terrain masks in declaration order.
func (c *Config) TerrainMasks() []int {
	masks := make([]int, len(c.Terrains))
	for i, t := range c.Terrains {
		masks[i] = t.Mask
	}
	return masks
}

// Settings converts the loaded configuration into a QuadtreeMapXSettings,
// the only point where this package touches qdpf's pathfinder surface.
func (c *Config) Settings() qdpf.QuadtreeMapXSettings {
	return qdpf.QuadtreeMapXSettings{
		AgentSizes:    c.AgentSizes,
		TerrainMasks:  c.TerrainMasks(),
		MaxNodeWidth:  c.LeafPolicy.MaxNodeWidth,
		MaxNodeHeight: c.LeafPolicy.MaxNodeHeight,
		Step:          c.LeafPolicy.Step,
	}
}
