// Package config loads and saves simulation settings as YAML and maps
// them onto a mechsim context configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/codifies/mechsim"
)

const (
	DefaultSlice      = 1.0 / 240
	DefaultMaxSteps   = 6
	DefaultCellSize   = 2.0
	DefaultCells      = 4096
	DefaultDuration   = 10.0
	DefaultEntities   = 40
	DefaultDropHeight = 8.0
	DefaultArena      = 10.0
)

type Config struct {
	Slice    float64     `yaml:"slice"`
	MaxSteps int         `yaml:"max_steps"`
	Gravity  [3]float64  `yaml:"gravity"`
	CellSize float64     `yaml:"cell_size"`
	Cells    int         `yaml:"cells"`
	Seed     int64       `yaml:"seed"`
	Scene    SceneConfig `yaml:"scene"`
}

type SceneConfig struct {
	// Duration is how long the scene runs, in simulated seconds.
	Duration float64 `yaml:"duration"`
	// Entities is how many bodies the scene drops in.
	Entities int `yaml:"entities"`
	// Shapes names the shape kinds the spawner may pick from; empty
	// means all of them.
	Shapes []string `yaml:"shapes"`
	// Floor is the surface material of the ground plane.
	Floor string `yaml:"floor"`
	// DropHeight is the spawn altitude above the floor.
	DropHeight float64 `yaml:"drop_height"`
	// Arena is the half-extent of the spawn area in X and Z.
	Arena float64 `yaml:"arena"`
}

func DefaultConfig() *Config {
	return &Config{
		Slice:    DefaultSlice,
		MaxSteps: DefaultMaxSteps,
		Gravity:  [3]float64{0, -9.8, 0},
		CellSize: DefaultCellSize,
		Cells:    DefaultCells,
		Scene: SceneConfig{
			Duration:   DefaultDuration,
			Entities:   DefaultEntities,
			Floor:      "wood",
			DropHeight: DefaultDropHeight,
			Arena:      DefaultArena,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sim maps the file-level settings to a mechsim context configuration.
func (c *Config) Sim() mechsim.Config {
	return mechsim.Config{
		Slice:    c.Slice,
		MaxSteps: c.MaxSteps,
		Gravity:  mgl64.Vec3{c.Gravity[0], c.Gravity[1], c.Gravity[2]},
		CellSize: c.CellSize,
		Cells:    c.Cells,
		Seed:     c.Seed,
	}
}

var shapeNames = map[string]mechsim.ShapeMask{
	"box":      mechsim.BoxShape,
	"sphere":   mechsim.SphereShape,
	"cylinder": mechsim.CylinderShape,
	"capsule":  mechsim.CapsuleShape,
	"dumbbell": mechsim.DumbbellShape,
}

// ShapeMask resolves the scene's shape names. Empty means every kind.
func (s *SceneConfig) ShapeMask() (mechsim.ShapeMask, error) {
	if len(s.Shapes) == 0 {
		return mechsim.AllShapes, nil
	}
	var mask mechsim.ShapeMask
	for _, name := range s.Shapes {
		bit, ok := shapeNames[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("unknown shape %q", name)
		}
		mask |= bit
	}
	return mask, nil
}

var surfaceNames = map[string]mechsim.SurfaceKind{
	"wood":   mechsim.Wood,
	"metal":  mechsim.Metal,
	"ice":    mechsim.Ice,
	"rubber": mechsim.Rubber,
	"earth":  mechsim.Earth,
}

// FloorSurface resolves the scene's floor material name.
func (s *SceneConfig) FloorSurface() (*mechsim.Surface, error) {
	if s.Floor == "" {
		return mechsim.DefaultSurface, nil
	}
	kind, ok := surfaceNames[strings.ToLower(s.Floor)]
	if !ok {
		return nil, fmt.Errorf("unknown surface %q", s.Floor)
	}
	return &mechsim.Surfaces[kind], nil
}
