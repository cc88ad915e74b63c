package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	WorldW     int `yaml:"world_w"`
	WorldH     int `yaml:"world_h"`
	TickRateHz int `yaml:"tick_rate_hz"`

	NodeMaxAge      int `yaml:"node_max_age"`
	NodeMaxEnergy   int `yaml:"node_max_energy"`
	NodeMaxMinerals int `yaml:"node_max_minerals"`
	MineralEnergy   int `yaml:"mineral_energy"`

	SunAmount          int `yaml:"sun_amount"`
	SunLevelHeight     int `yaml:"sun_level_height"`
	MineralAmount      int `yaml:"mineral_amount"`
	MineralLevelHeight int `yaml:"mineral_level_height"`

	RelativeThreshold int `yaml:"relative_threshold"`
	ReproductionCost  int `yaml:"reproduction_cost"`
	MutationRatePct   int `yaml:"mutation_rate_pct"`

	StartNodeNum int `yaml:"start_node_num"`
	StartEnergy  int `yaml:"start_energy"`
	FoodEnergy   int `yaml:"food_energy"`
}

func Defaults() Tuning {
	return Tuning{
		WorldW:             300,
		WorldH:             150,
		TickRateHz:         20,
		NodeMaxAge:         500,
		NodeMaxEnergy:      255,
		NodeMaxMinerals:    15,
		MineralEnergy:      4,
		SunAmount:          5,
		SunLevelHeight:     6,
		MineralAmount:      5,
		MineralLevelHeight: 6,
		RelativeThreshold:  2,
		ReproductionCost:   10,
		MutationRatePct:    25,
		StartNodeNum:       200,
		StartEnergy:        100,
		FoodEnergy:         20,
	}
}

func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	switch {
	case t.WorldW < 1 || t.WorldH < 1:
		return fmt.Errorf("world size %dx%d", t.WorldW, t.WorldH)
	case t.TickRateHz < 1 || t.TickRateHz > 1000:
		return fmt.Errorf("tick_rate_hz=%d", t.TickRateHz)
	case t.NodeMaxAge < 1 || t.NodeMaxAge > 511:
		return fmt.Errorf("node_max_age=%d (9-bit field)", t.NodeMaxAge)
	case t.NodeMaxEnergy < 1 || t.NodeMaxEnergy > 255:
		return fmt.Errorf("node_max_energy=%d", t.NodeMaxEnergy)
	case t.NodeMaxMinerals < 0 || t.NodeMaxMinerals > 15:
		return fmt.Errorf("node_max_minerals=%d", t.NodeMaxMinerals)
	case t.MineralEnergy < 0:
		return fmt.Errorf("mineral_energy=%d", t.MineralEnergy)
	case t.SunAmount < 0 || t.SunAmount > 255:
		return fmt.Errorf("sun_amount=%d", t.SunAmount)
	case t.SunLevelHeight < 1:
		return fmt.Errorf("sun_level_height=%d", t.SunLevelHeight)
	case t.MineralAmount < 0 || t.MineralAmount > 15:
		return fmt.Errorf("mineral_amount=%d", t.MineralAmount)
	case t.MineralLevelHeight < 1:
		return fmt.Errorf("mineral_level_height=%d", t.MineralLevelHeight)
	case t.RelativeThreshold < 0 || t.RelativeThreshold > 64:
		return fmt.Errorf("relative_threshold=%d", t.RelativeThreshold)
	case t.ReproductionCost < 0:
		return fmt.Errorf("reproduction_cost=%d", t.ReproductionCost)
	case t.MutationRatePct < 0 || t.MutationRatePct > 100:
		return fmt.Errorf("mutation_rate_pct=%d", t.MutationRatePct)
	case t.StartNodeNum < 0:
		return fmt.Errorf("start_node_num=%d", t.StartNodeNum)
	case t.StartEnergy < 1 || t.StartEnergy > 255:
		return fmt.Errorf("start_energy=%d", t.StartEnergy)
	case t.FoodEnergy < 1 || t.FoodEnergy > 255:
		return fmt.Errorf("food_energy=%d", t.FoodEnergy)
	}
	return nil
}
