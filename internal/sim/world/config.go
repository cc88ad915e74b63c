package world

import "fmt"

type WorldConfig struct {
	ID         string
	Seed       int64
	TickRateHz int

	W, H int

	NodeMaxAge      int // death-by-age threshold, <= 511
	NodeMaxEnergy   int // energy cap, <= 255
	NodeMaxMinerals int // mineral cap, <= 15
	MineralEnergy   int // energy per mineral on CONVERT_MINERALS

	SunAmount          int
	SunLevelHeight     int
	MineralAmount      int
	MineralLevelHeight int

	RelativeThreshold int // max genome byte differences for the relative branch
	ReproductionCost  int
	MutationRatePct   int // integer percentage in [0, 100]

	StartNodeNum int
	StartEnergy  int
	FoodEnergy   int // energy of the corpse food written on death
}

// SetConfig updates one recognized field by its wire name. WORLD_SIZE is
// validated here but only takes effect at the next Reset; everything else is
// visible to the next step. Must not be called concurrently with Step; the
// server loop serializes updates at tick boundaries.
func (w *World) SetConfig(name string, vals ...int) error {
	if name == "WORLD_SIZE" {
		if len(vals) != 2 {
			return fmt.Errorf("%w: WORLD_SIZE wants 2 values, got %d", ErrConfigRejected, len(vals))
		}
		if vals[0] < 1 || vals[1] < 1 {
			return fmt.Errorf("%w: WORLD_SIZE %dx%d", ErrConfigRejected, vals[0], vals[1])
		}
		w.pendingW, w.pendingH = vals[0], vals[1]
		return nil
	}
	if len(vals) != 1 {
		return fmt.Errorf("%w: %s wants 1 value, got %d", ErrConfigRejected, name, len(vals))
	}
	return w.cfg.apply(name, vals[0])
}

func (c *WorldConfig) apply(name string, v int) error {
	set := func(dst *int, lo, hi int) error {
		if v < lo || v > hi {
			return fmt.Errorf("%w: %s=%d outside [%d, %d]", ErrConfigRejected, name, v, lo, hi)
		}
		*dst = v
		return nil
	}
	const unbounded = 1 << 30
	switch name {
	case "NODE_MAX_AGE":
		return set(&c.NodeMaxAge, 1, 511)
	case "NODE_MAX_ENERGY":
		return set(&c.NodeMaxEnergy, 1, 255)
	case "NODE_MAX_MINERALS":
		return set(&c.NodeMaxMinerals, 0, 15)
	case "MINERAL_ENERGY":
		return set(&c.MineralEnergy, 0, unbounded)
	case "SUN_AMOUNT":
		return set(&c.SunAmount, 0, 255)
	case "SUN_LEVEL_HEIGHT":
		return set(&c.SunLevelHeight, 1, unbounded)
	case "MINERAL_AMOUNT":
		return set(&c.MineralAmount, 0, 15)
	case "MINERAL_LEVEL_HEIGHT":
		return set(&c.MineralLevelHeight, 1, unbounded)
	case "RELATIVE_THRESHOLD":
		return set(&c.RelativeThreshold, 0, 64)
	case "REPRODUCTION_COST":
		return set(&c.ReproductionCost, 0, unbounded)
	case "MUTATION_RATE":
		return set(&c.MutationRatePct, 0, 100)
	case "START_NODE_NUM":
		return set(&c.StartNodeNum, 0, unbounded)
	case "START_ENERGY":
		return set(&c.StartEnergy, 1, 255)
	case "FOOD_ENERGY":
		return set(&c.FoodEnergy, 1, 255)
	case "TICK_RATE_HZ":
		return set(&c.TickRateHz, 1, 1000)
	}
	return fmt.Errorf("%w: unknown field %q", ErrConfigRejected, name)
}

func (c WorldConfig) validate() error {
	switch {
	case c.W < 1 || c.H < 1:
		return fmt.Errorf("%w: world size %dx%d", ErrBackendUnavailable, c.W, c.H)
	case c.NodeMaxAge < 1 || c.NodeMaxAge > 511:
		return fmt.Errorf("%w: NODE_MAX_AGE=%d", ErrBackendUnavailable, c.NodeMaxAge)
	case c.NodeMaxEnergy < 1 || c.NodeMaxEnergy > 255:
		return fmt.Errorf("%w: NODE_MAX_ENERGY=%d", ErrBackendUnavailable, c.NodeMaxEnergy)
	case c.NodeMaxMinerals < 0 || c.NodeMaxMinerals > 15:
		return fmt.Errorf("%w: NODE_MAX_MINERALS=%d", ErrBackendUnavailable, c.NodeMaxMinerals)
	case c.SunLevelHeight < 1 || c.MineralLevelHeight < 1:
		return fmt.Errorf("%w: level height must be positive", ErrBackendUnavailable)
	case c.MutationRatePct < 0 || c.MutationRatePct > 100:
		return fmt.Errorf("%w: MUTATION_RATE=%d", ErrBackendUnavailable, c.MutationRatePct)
	case c.StartEnergy < 1 || c.StartEnergy > 255:
		return fmt.Errorf("%w: START_ENERGY=%d", ErrBackendUnavailable, c.StartEnergy)
	case c.FoodEnergy < 1 || c.FoodEnergy > 255:
		return fmt.Errorf("%w: FOOD_ENERGY=%d", ErrBackendUnavailable, c.FoodEnergy)
	}
	return nil
}
