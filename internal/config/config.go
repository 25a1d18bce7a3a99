// Package config loads the tree building parameters from YAML or JSON files
// layered over built-in defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"octbsp/internal/bsp"
	"octbsp/internal/core"

	"github.com/segmentio/encoding/json"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("invalid configuration")

// BSP holds the splitter settings shared by standalone trees and mini-BSPs
type BSP struct {
	Mode        string `yaml:"mode" json:"mode"`
	Candidates  int    `yaml:"candidates" json:"candidates"`
	Seed        int64  `yaml:"seed" json:"seed"`
	SplitWeight int    `yaml:"split_weight" json:"split_weight"`
}

// Bounds is an optional fixed octree box
type Bounds struct {
	Min [3]float64 `yaml:"min" json:"min"`
	Max [3]float64 `yaml:"max" json:"max"`
}

type Octree struct {
	BSPNum   int     `yaml:"bsp_num" json:"bsp_num"`
	MaxDepth int     `yaml:"max_depth" json:"max_depth"`
	Bounds   *Bounds `yaml:"bounds,omitempty" json:"bounds,omitempty"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" json:"enabled"`
}

type Config struct {
	BSP     BSP     `yaml:"bsp" json:"bsp"`
	Octree  Octree  `yaml:"octree" json:"octree"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
}

// Default returns the built-in configuration
func Default() Config {
	var c Config
	if err := yaml.Unmarshal(DEFAULT, &c); err != nil {
		panic(fmt.Sprintf("invalid default config: %v", err))
	}
	return c
}

// Load reads the configuration files in order on top of the defaults, later
// files overriding earlier ones, and validates the result.
func Load(paths ...string) (Config, error) {
	c := Default()
	for _, path := range paths {
		if err := readFile(path, &c); err != nil {
			return Config{}, fmt.Errorf("could not process config file %s: %w", path, err)
		}
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

func readFile(path string, c *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, c)
	case ".json":
		return json.Unmarshal(data, c)
	}
	return fmt.Errorf("not in a valid format")
}

// Validate checks every field and reports the first problem
func (c Config) Validate() error {
	if _, err := bsp.ParseMode(c.BSP.Mode); err != nil {
		return fmt.Errorf("%w: bsp.mode: %v", ErrInvalid, err)
	}
	if c.BSP.Candidates < 0 {
		return fmt.Errorf("%w: bsp.candidates must not be negative", ErrInvalid)
	}
	if c.BSP.SplitWeight < 0 {
		return fmt.Errorf("%w: bsp.split_weight must not be negative", ErrInvalid)
	}
	if c.Octree.BSPNum < 1 {
		return fmt.Errorf("%w: octree.bsp_num must be at least 1", ErrInvalid)
	}
	if c.Octree.MaxDepth < 0 || c.Octree.MaxDepth > 32 {
		return fmt.Errorf("%w: octree.max_depth must be between 0 and 32", ErrInvalid)
	}
	if b := c.Octree.Bounds; b != nil {
		for axis := 0; axis < 3; axis++ {
			if b.Min[axis] > b.Max[axis] {
				return fmt.Errorf("%w: octree.bounds min exceeds max on axis %d", ErrInvalid, axis)
			}
		}
	}
	return nil
}

// Mode returns the parsed splitter mode. Call Validate first.
func (c Config) Mode() bsp.Mode {
	m, _ := bsp.ParseMode(c.BSP.Mode)
	return m
}

// OctreeBounds returns the configured box, or an empty box when the bounds
// should follow the polygons.
func (c Config) OctreeBounds() core.AABB3D {
	b := c.Octree.Bounds
	if b == nil {
		return core.EmptyAABB3D()
	}
	return core.AABB3D{
		Min: core.Vec3(b.Min[0], b.Min[1], b.Min[2]),
		Max: core.Vec3(b.Max[0], b.Max[1], b.Max[2]),
	}
}
