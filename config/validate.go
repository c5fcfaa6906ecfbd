package config

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfiguration is wrapped by every validation failure.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Vegetation and barrier modes.
const (
	VegetationRandom = "random"
	VegetationNoise  = "noise"

	BarrierRiver = "river"
	BarrierNone  = "none"
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfiguration, fmt.Sprintf(format, args...))
}

// Validate checks every parameter and returns all problems joined.
// The returned error satisfies errors.Is(err, ErrInvalidConfiguration).
func (c *Config) Validate() error {
	var errs []error

	if c.World.Width <= 0 {
		errs = append(errs, invalid("world.width must be positive, got %d", c.World.Width))
	}
	if c.World.Height <= 0 {
		errs = append(errs, invalid("world.height must be positive, got %d", c.World.Height))
	}
	if c.Population.Cats < 0 {
		errs = append(errs, invalid("population.cats must be non-negative, got %d", c.Population.Cats))
	}
	if c.Population.Prey < 0 {
		errs = append(errs, invalid("population.prey must be non-negative, got %d", c.Population.Prey))
	}
	if math.IsNaN(c.Predation.Base) || c.Predation.Base < 0 {
		errs = append(errs, invalid("predation.base must be non-negative, got %g", c.Predation.Base))
	}
	if math.IsNaN(c.Predation.Coef) || c.Predation.Coef < 0 {
		errs = append(errs, invalid("predation.coef must be non-negative, got %g", c.Predation.Coef))
	}

	probs := []struct {
		name string
		v    float64
	}{
		{"prey.flee_prob", c.Prey.FleeProb},
		{"prey.female_ratio", c.Prey.FemaleRatio},
		{"environment.regrow_prob", c.Environment.RegrowProb},
	}
	for _, p := range probs {
		if math.IsNaN(p.v) || p.v < 0 || p.v > 1 {
			errs = append(errs, invalid("%s must be in [0,1], got %g", p.name, p.v))
		}
	}

	if c.Prey.FleeDepletion < 0 || c.Prey.ForageDepletion < 0 {
		errs = append(errs, invalid("prey depletion amounts must be non-negative"))
	}
	if c.Prey.ReproductionAge < 0 {
		errs = append(errs, invalid("prey.reproduction_age must be non-negative, got %d", c.Prey.ReproductionAge))
	}
	if c.Prey.MaxOffspring < 0 {
		errs = append(errs, invalid("prey.max_offspring must be non-negative, got %d", c.Prey.MaxOffspring))
	}
	if c.Cat.MaxEnergy < 1 {
		errs = append(errs, invalid("cat.max_energy must be at least 1, got %d", c.Cat.MaxEnergy))
	}
	if c.Cat.InitialEnergy < 1 || c.Cat.InitialEnergy > c.Cat.MaxEnergy {
		errs = append(errs, invalid("cat.initial_energy must be in [1,%d], got %d", c.Cat.MaxEnergy, c.Cat.InitialEnergy))
	}
	if c.Cat.StarvationTicks < 1 {
		errs = append(errs, invalid("cat.starvation_ticks must be at least 1, got %d", c.Cat.StarvationTicks))
	}
	if c.Environment.ScentRadius < 0 {
		errs = append(errs, invalid("environment.scent_radius must be non-negative, got %d", c.Environment.ScentRadius))
	}

	if c.Vegetation.Grid == nil {
		switch c.Vegetation.Mode {
		case VegetationRandom:
			if err := validateWeights(c.Vegetation.Weights); err != nil {
				errs = append(errs, err)
			}
		case VegetationNoise:
			if c.Vegetation.NoiseScale <= 0 {
				errs = append(errs, invalid("vegetation.noise_scale must be positive, got %g", c.Vegetation.NoiseScale))
			}
		default:
			errs = append(errs, invalid("unknown vegetation.mode %q", c.Vegetation.Mode))
		}
	}
	if c.Barrier.Grid == nil {
		switch c.Barrier.Mode {
		case BarrierRiver:
			if c.Barrier.Thickness < 1 {
				errs = append(errs, invalid("barrier.thickness must be at least 1, got %d", c.Barrier.Thickness))
			}
		case BarrierNone:
		default:
			errs = append(errs, invalid("unknown barrier.mode %q", c.Barrier.Mode))
		}
	}

	if c.World.Width > 0 && c.World.Height > 0 {
		errs = append(errs, c.validateGrids()...)
	}

	return errors.Join(errs...)
}

func validateWeights(w []float64) error {
	if len(w) != 5 {
		return invalid("vegetation.weights needs 5 entries (levels 0..4), got %d", len(w))
	}
	var sum float64
	for _, v := range w {
		if v < 0 {
			return invalid("vegetation.weights must be non-negative")
		}
		sum += v
	}
	if sum <= 0 {
		return invalid("vegetation.weights must not all be zero")
	}
	return nil
}

// validateGrids checks supplied grid shapes against each other and the world size.
func (c *Config) validateGrids() []error {
	var errs []error
	w, h := c.World.Width, c.World.Height

	if g := c.Vegetation.Grid; g != nil {
		if cw, ch, ok := shape(len(g), func(x int) int { return len(g[x]) }); !ok {
			errs = append(errs, invalid("vegetation grid is ragged"))
		} else if cw != w || ch != h {
			errs = append(errs, invalid("vegetation grid is %dx%d, world is %dx%d", cw, ch, w, h))
		}
	}
	if g := c.Barrier.Grid; g != nil {
		if cw, ch, ok := shape(len(g), func(x int) int { return len(g[x]) }); !ok {
			errs = append(errs, invalid("barrier grid is ragged"))
		} else if cw != w || ch != h {
			errs = append(errs, invalid("barrier grid is %dx%d, world is %dx%d", cw, ch, w, h))
		}
	}
	if v, b := c.Vegetation.Grid, c.Barrier.Grid; v != nil && b != nil && len(errs) == 0 {
		if len(v) != len(b) || len(v[0]) != len(b[0]) {
			errs = append(errs, invalid("vegetation and barrier grids differ in shape"))
		}
	}
	return errs
}

// shape returns the [x][y] dimensions of a column-major grid, or ok=false if columns differ.
func shape(cols int, colLen func(int) int) (w, h int, ok bool) {
	if cols == 0 {
		return 0, 0, true
	}
	h = colLen(0)
	for x := 1; x < cols; x++ {
		if colLen(x) != h {
			return cols, h, false
		}
	}
	return cols, h, true
}
