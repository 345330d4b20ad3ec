package layout

import (
	"math"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/physics"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	DefaultCellSize              = 100.0
	DefaultCellCapacity          = 100
	DefaultRepulsionStrength     = 50.0
	DefaultSpringStrengthOutward = 0.0025
	DefaultSpringStrengthInward  = 0.005
	DefaultRestLength            = 100.0
	DefaultLayerSpacing          = 100.0
	DefaultDepthStrength         = 0.01
	DefaultCenteringStrength     = 0.0002
	DefaultMinClampDistance      = 5.0
	DefaultDamping               = 0.05
	DefaultSubStepsPerTick       = 1
	DefaultScatter               = 5.0
	DefaultSeed                  = uint64(42)
	DefaultPlacement             = PlacementHeight
)

// Placement strategy names.
const (
	PlacementRandom = "random"
	PlacementHeight = "height"
	PlacementParent = "parent"
)

// Config holds the simulation constants. The same names are used in TOML,
// YAML and JSON configuration files.
type Config struct {
	CellSize              float64 `toml:"cellSize" yaml:"cellSize" json:"cellSize"`
	CellCapacity          int     `toml:"cellCapacity" yaml:"cellCapacity" json:"cellCapacity"`
	RepulsionStrength     float64 `toml:"repulsionStrength" yaml:"repulsionStrength" json:"repulsionStrength"`
	SpringStrengthOutward float64 `toml:"springStrengthOutward" yaml:"springStrengthOutward" json:"springStrengthOutward"`
	SpringStrengthInward  float64 `toml:"springStrengthInward" yaml:"springStrengthInward" json:"springStrengthInward"`
	RestLength            float64 `toml:"restLength" yaml:"restLength" json:"restLength"`
	LayerSpacing          float64 `toml:"layerSpacing" yaml:"layerSpacing" json:"layerSpacing"`
	DepthStrength         float64 `toml:"depthStrength" yaml:"depthStrength" json:"depthStrength"`
	CenteringStrength     float64 `toml:"centeringStrength" yaml:"centeringStrength" json:"centeringStrength"`
	MinClampDistance      float64 `toml:"minClampDistance" yaml:"minClampDistance" json:"minClampDistance"`
	Damping               float64 `toml:"damping" yaml:"damping" json:"damping"`
	SubStepsPerTick       int     `toml:"subStepsPerTick" yaml:"subStepsPerTick" json:"subStepsPerTick"`

	// Initial placement.
	Placement string  `toml:"placement" yaml:"placement" json:"placement"`
	Scatter   float64 `toml:"scatter" yaml:"scatter" json:"scatter"`
	Seed      uint64  `toml:"seed" yaml:"seed" json:"seed"`

	// Height computation.
	HeightDirection string `toml:"heightDirection" yaml:"heightDirection" json:"heightDirection"`
	FlattenCycles   bool   `toml:"flattenCycles" yaml:"flattenCycles" json:"flattenCycles"`
}

// DefaultConfig returns the configuration used when no file or flag
// overrides a value.
func DefaultConfig() Config {
	return Config{
		CellSize:              DefaultCellSize,
		CellCapacity:          DefaultCellCapacity,
		RepulsionStrength:     DefaultRepulsionStrength,
		SpringStrengthOutward: DefaultSpringStrengthOutward,
		SpringStrengthInward:  DefaultSpringStrengthInward,
		RestLength:            DefaultRestLength,
		LayerSpacing:          DefaultLayerSpacing,
		DepthStrength:         DefaultDepthStrength,
		CenteringStrength:     DefaultCenteringStrength,
		MinClampDistance:      DefaultMinClampDistance,
		Damping:               DefaultDamping,
		SubStepsPerTick:       DefaultSubStepsPerTick,
		Placement:             DefaultPlacement,
		Scatter:               DefaultScatter,
		Seed:                  DefaultSeed,
		HeightDirection:       graph.Inward.String(),
	}
}

// Validate reports the first invalid value as an INVALID_CONFIG error.
//
// Damping must lie strictly between 0 and 1: with no damping a graph under
// constant forces oscillates without bound.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"cellSize", c.CellSize},
		{"minClampDistance", c.MinClampDistance},
	}
	for _, p := range positive {
		if !finite(p.v) || p.v <= 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be positive, got %v", p.name, p.v)
		}
	}

	nonNegative := []struct {
		name string
		v    float64
	}{
		{"repulsionStrength", c.RepulsionStrength},
		{"springStrengthOutward", c.SpringStrengthOutward},
		{"springStrengthInward", c.SpringStrengthInward},
		{"restLength", c.RestLength},
		{"depthStrength", c.DepthStrength},
		{"centeringStrength", c.CenteringStrength},
		{"scatter", c.Scatter},
	}
	for _, p := range nonNegative {
		if !finite(p.v) || p.v < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s must be a non-negative number, got %v", p.name, p.v)
		}
	}

	if !finite(c.LayerSpacing) {
		return errors.New(errors.ErrCodeInvalidConfig, "layerSpacing must be finite, got %v", c.LayerSpacing)
	}
	if !finite(c.Damping) || c.Damping <= 0 || c.Damping >= 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "damping must lie in (0, 1), got %v", c.Damping)
	}
	if c.CellCapacity <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cellCapacity must be positive, got %d", c.CellCapacity)
	}
	if c.SubStepsPerTick < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "subStepsPerTick must be at least 1, got %d", c.SubStepsPerTick)
	}
	if _, ok := placers[c.Placement]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown placement %q (must be 'random', 'height', or 'parent')", c.Placement)
	}
	if _, err := graph.ParseDirection(c.HeightDirection); err != nil {
		return err
	}
	return nil
}

// Params converts the force constants into physics parameters.
func (c Config) Params() physics.Params {
	return physics.Params{
		Repulsion:     c.RepulsionStrength,
		SpringOutward: c.SpringStrengthOutward,
		SpringInward:  c.SpringStrengthInward,
		RestLength:    c.RestLength,
		LayerSpacing:  c.LayerSpacing,
		DepthStrength: c.DepthStrength,
		Centering:     c.CenteringStrength,
		MinClamp:      c.MinClampDistance,
	}
}

// MaxKick returns the largest force one cell mate can exert in a single
// step, RepulsionStrength / MinClampDistance^2. When it approaches CellSize
// close pairs are thrown across cells and the layout does not settle.
func (c Config) MaxKick() float64 {
	return c.RepulsionStrength / (c.MinClampDistance * c.MinClampDistance)
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
