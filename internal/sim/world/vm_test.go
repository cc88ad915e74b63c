package world

import (
	"testing"

	"evogrid.ai/internal/sim/cell"
)

func TestVM_TurnClockwise(t *testing.T) {
	// 1x1 world, direction east, gene TURN_CW, no sun.
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Genome: genomeOf(geneTurnCW, genePhotosynthesize)})

	w.Step()

	c := mustGet(t, w, 0, 0)
	if c.Dir != cell.South {
		t.Fatalf("direction = %v, want South", c.Dir)
	}
	if c.CurrentGene != 1 || c.Age != 1 || c.Energy != 99 {
		t.Fatalf("bookkeeping: %+v", c)
	}
}

func TestVM_TurnCounterClockwise(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Genome: genomeOf(geneTurnCCW)})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.Dir != cell.North {
		t.Fatalf("direction = %v, want North", c.Dir)
	}
}

func TestVM_PhotosynthesisFillsEnergy(t *testing.T) {
	cfg := testConfig(1, 1)
	cfg.SunAmount = 5
	cfg.SunLevelHeight = 1
	w := mustWorld(t, cfg)
	var g cell.Genome
	for i := range g {
		g[i] = genePhotosynthesize
	}
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 10, Genome: g})

	w.Step()

	c := mustGet(t, w, 0, 0)
	if c.Energy != 14 { // 10 + 5 sun - 1 upkeep
		t.Fatalf("energy = %d, want 14", c.Energy)
	}
	if c.Age != 1 || c.Diet.Photo != 1 {
		t.Fatalf("bookkeeping: %+v", c)
	}
}

func TestVM_PhotosynthesisNoSunNoDiet(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 10, Genome: genomeOf(genePhotosynthesize)})
	w.Step()
	c := mustGet(t, w, 0, 0)
	if c.Energy != 9 || c.Diet.Photo != 0 {
		t.Fatalf("dark photosynthesis must be a no-op: %+v", c)
	}
}

func TestVM_Jump(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	g := genomeOf(17) // jump 17 genes forward
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 100, Genome: g})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.CurrentGene != 17 {
		t.Fatalf("current gene = %d, want 17", c.CurrentGene)
	}
}

func TestVM_ZeroGeneAdvancesOne(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 100, Genome: cell.Genome{}})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.CurrentGene != 1 {
		t.Fatalf("current gene = %d, want 1", c.CurrentGene)
	}
}

func TestVM_InertCodeAdvancesOne(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 100, Genome: genomeOf(200)})
	w.Step()
	c := mustGet(t, w, 0, 0)
	if c.CurrentGene != 1 || c.Energy != 99 {
		t.Fatalf("code 200 must only pay upkeep: %+v", c)
	}
}

func TestVM_MoveForward(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 50, Genome: genomeOf(geneMoveForward)})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.Kind != cell.Air {
		t.Fatalf("origin = %v, want AIR", c.Kind)
	}
	if c := mustGet(t, w, 1, 0); c.Kind != cell.Active || c.Energy != 49 {
		t.Fatalf("target = %+v, want the moved agent", c)
	}
}

func TestVM_Predation(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 10, Genome: genomeOf(geneEatForward)})
	setCell(w, 1, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 30, Genome: cell.Genome{}})

	w.Step()

	if c := mustGet(t, w, 1, 0); c.Kind != cell.Air {
		t.Fatalf("prey cell = %v, want AIR", c.Kind)
	}
	a := mustGet(t, w, 0, 0)
	if a.Energy != 39 { // 10 + 30 - 1 upkeep
		t.Fatalf("eater energy = %d, want 39", a.Energy)
	}
	if a.Diet.Eat != 1 {
		t.Fatalf("diet.eat = %d, want 1", a.Diet.Eat)
	}
}

func TestVM_EatFood(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	g := genomeOf(geneEatForward, 5, 9) // success -> +5, failure -> +9
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 10, Genome: g})
	setCell(w, 1, 0, cell.Cell{Kind: cell.Food, Energy: 7})

	w.Step()

	a := mustGet(t, w, 0, 0)
	if a.Energy != 16 || a.CurrentGene != 5 {
		t.Fatalf("eat success: %+v", a)
	}
	if c := mustGet(t, w, 1, 0); c.Kind != cell.Air {
		t.Fatalf("eaten food must erase, got %v", c.Kind)
	}

	// Nothing in front: failure branch.
	w = mustWorld(t, testConfig(3, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 10, Genome: g})
	w.Step()
	if a := mustGet(t, w, 0, 0); a.CurrentGene != 9 {
		t.Fatalf("eat failure advance = %d, want 9", a.CurrentGene)
	}
}

func TestVM_CheckForwardBranches(t *testing.T) {
	// genome: CHECK_FORWARD with args relative=11, stranger=12, food=13,
	// air=14, wall=15.
	g := genomeOf(geneCheckForward, 11, 12, 13, 14, 15)

	run := func(prep func(w *World), dir cell.Direction) cell.Cell {
		t.Helper()
		w := mustWorld(t, testConfig(3, 3))
		me := cell.Cell{Kind: cell.Active, Dir: dir, Energy: 100, Genome: g}
		setCell(w, 1, 1, me)
		prep(w)
		w.Step()
		return mustGet(t, w, 1, 1)
	}

	if c := run(func(w *World) {
		setCell(w, 2, 1, cell.Cell{Kind: cell.Active, Energy: 5, Genome: g})
	}, cell.East); c.CurrentGene != 11 {
		t.Fatalf("relative branch = %d, want 11", c.CurrentGene)
	}

	var stranger cell.Genome
	for i := range stranger {
		stranger[i] = 70
	}
	if c := run(func(w *World) {
		setCell(w, 2, 1, cell.Cell{Kind: cell.Active, Energy: 5, Genome: stranger})
	}, cell.East); c.CurrentGene != 12 {
		t.Fatalf("stranger branch = %d, want 12", c.CurrentGene)
	}

	if c := run(func(w *World) {
		setCell(w, 2, 1, cell.Cell{Kind: cell.Food, Energy: 5})
	}, cell.East); c.CurrentGene != 13 {
		t.Fatalf("food branch = %d, want 13", c.CurrentGene)
	}

	if c := run(func(w *World) {}, cell.East); c.CurrentGene != 14 {
		t.Fatalf("air branch = %d, want 14", c.CurrentGene)
	}

	// Facing north from the middle row reaches y=0; from y=0 it reaches the
	// wall sentinel above the world.
	w := mustWorld(t, testConfig(3, 3))
	setCell(w, 1, 0, cell.Cell{Kind: cell.Active, Dir: cell.North, Energy: 100, Genome: g})
	w.Step()
	if c := mustGet(t, w, 1, 0); c.CurrentGene != 15 {
		t.Fatalf("wall branch = %d, want 15", c.CurrentGene)
	}
}

func TestVM_CheckEnergyBothArmsSameSlot(t *testing.T) {
	// Both arms of CHECK_ENERGY advance by getArg(2); slot 3 is never read.
	// The original works this way; genomes select on it, so it stays.
	g := genomeOf(geneCheckEnergy, 50, 7, 9)

	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 200, Genome: g})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.CurrentGene != 7 {
		t.Fatalf("greater arm advance = %d, want 7", c.CurrentGene)
	}

	w = mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 20, Genome: g})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.CurrentGene != 7 {
		t.Fatalf("lesser arm advance = %d, want 7 (same slot)", c.CurrentGene)
	}
}

func TestVM_ConvertMinerals(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 10, Minerals: 6, Genome: genomeOf(geneConvertMinerals)})

	w.Step()

	c := mustGet(t, w, 0, 0)
	if c.Energy != 33 { // 10 + 6*4 - 1
		t.Fatalf("energy = %d, want 33", c.Energy)
	}
	if c.Minerals != 0 || c.Diet.Mineral != 1 {
		t.Fatalf("minerals not converted: %+v", c)
	}
}

func TestVM_MineralIntakeAtBottom(t *testing.T) {
	cfg := testConfig(1, 4)
	cfg.MineralAmount = 5
	cfg.MineralLevelHeight = 1
	w := mustWorld(t, cfg)
	setCell(w, 0, 3, cell.Cell{Kind: cell.Active, Energy: 50, Genome: cell.Genome{}})

	w.Step()

	if c := mustGet(t, w, 0, 3); c.Minerals != 5 {
		t.Fatalf("minerals = %d, want mineralAt(bottom)=5", c.Minerals)
	}
	w.Step()
	w.Step()
	if c := mustGet(t, w, 0, 3); c.Minerals != 15 {
		t.Fatalf("minerals = %d, want cap 15", c.Minerals)
	}
}

func TestVM_DeathByAge(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 200, Age: uint16(w.Config().NodeMaxAge), Genome: cell.Genome{}})

	w.Step()

	c := mustGet(t, w, 0, 0)
	if c.Kind != cell.Food {
		t.Fatalf("cell = %v, want FOOD", c.Kind)
	}
	if int(c.Energy) != w.Config().FoodEnergy {
		t.Fatalf("corpse energy = %d, want FOOD_ENERGY=%d", c.Energy, w.Config().FoodEnergy)
	}
}

func TestVM_DeathByExhaustion(t *testing.T) {
	w := mustWorld(t, testConfig(1, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Energy: 1, Genome: cell.Genome{}})
	w.Step()
	if c := mustGet(t, w, 0, 0); c.Kind != cell.Food {
		t.Fatalf("exhausted node = %v, want FOOD", c.Kind)
	}
}

func TestVM_ReproduceForward(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	// REPRODUCE_FORWARD: child start gene 7, success advance 3, failure 9.
	g := genomeOf(geneReproduceForward, 7, 3, 9)
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Color: 4, Genome: g})

	w.Step()

	parent := mustGet(t, w, 0, 0)
	child := mustGet(t, w, 1, 0)
	half := (100 - w.Config().ReproductionCost) / 2
	if child.Kind != cell.Active || int(child.Energy) != half {
		t.Fatalf("child = %+v, want energy %d", child, half)
	}
	if child.Age != 0 || child.Dir != cell.East || child.CurrentGene != 7 || child.Color != 4 {
		t.Fatalf("child fields: %+v", child)
	}
	if child.Genome != g {
		t.Fatalf("child genome mutated with MUTATION_RATE=0")
	}
	if int(parent.Energy) != 100-half-1 {
		t.Fatalf("parent energy = %d, want %d", parent.Energy, 100-half-1)
	}
	if parent.CurrentGene != 3 {
		t.Fatalf("success advance = %d, want 3", parent.CurrentGene)
	}
}

func TestVM_ReproduceBackward(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	g := genomeOf(geneReproduceBackward, 0, 3, 9)
	setCell(w, 1, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Genome: g})

	w.Step()

	if c := mustGet(t, w, 0, 0); c.Kind != cell.Active {
		t.Fatalf("backward child missing: %v", c.Kind)
	}
	if c := mustGet(t, w, 0, 0); c.Dir != cell.East {
		t.Fatalf("child keeps the parent's direction, got %v", c.Dir)
	}
	if c := mustGet(t, w, 2, 0); c.Kind != cell.Air {
		t.Fatalf("forward cell must stay empty")
	}
}

func TestVM_ReproduceFailsWithoutEnergy(t *testing.T) {
	w := mustWorld(t, testConfig(3, 1))
	g := genomeOf(geneReproduceForward, 7, 3, 9)
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: uint8(w.Config().ReproductionCost), Genome: g})

	w.Step()

	if c := mustGet(t, w, 1, 0); c.Kind != cell.Air {
		t.Fatalf("no child expected")
	}
	if c := mustGet(t, w, 0, 0); c.CurrentGene != 9 {
		t.Fatalf("failure advance = %d, want 9", c.CurrentGene)
	}
}

func TestVM_ReproduceFailsWhenBlocked(t *testing.T) {
	w := mustWorld(t, testConfig(2, 1))
	g := genomeOf(geneReproduceForward, 7, 3, 9)
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Genome: g})
	setCell(w, 1, 0, cell.Cell{Kind: cell.Food, Energy: 1})

	w.Step()

	if c := mustGet(t, w, 0, 0); c.CurrentGene != 9 {
		t.Fatalf("blocked reproduction advance = %d, want 9", c.CurrentGene)
	}
	if c := mustGet(t, w, 0, 0); c.Energy != 99 {
		t.Fatalf("failed reproduction must not deduct energy, got %d", c.Energy)
	}
}

func TestVM_ReproduceMutation(t *testing.T) {
	cfg := testConfig(3, 1)
	cfg.MutationRatePct = 100
	w := mustWorld(t, cfg)
	g := genomeOf(geneReproduceForward, 7, 3, 9)
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 100, Color: 10, Genome: g})

	w.Step()

	parent := mustGet(t, w, 0, 0)
	child := mustGet(t, w, 1, 0)
	if child.Color != 11 {
		t.Fatalf("mutated child color = %d, want parent+1", child.Color)
	}
	if parent.Genome != g {
		t.Fatalf("mutation must not touch the parent genome")
	}
	if cell.Distance(child.Genome, g) > 1 {
		t.Fatalf("mutation changed %d genes, want at most 1", cell.Distance(child.Genome, g))
	}
}

func TestVM_EatenActiveSkipsItsGene(t *testing.T) {
	// The prey would have moved away, but being eaten erases it first.
	w := mustWorld(t, testConfig(4, 1))
	setCell(w, 0, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 10, Genome: genomeOf(geneEatForward)})
	setCell(w, 1, 0, cell.Cell{Kind: cell.Active, Dir: cell.East, Energy: 30, Genome: genomeOf(geneMoveForward)})

	w.Step()

	if c := mustGet(t, w, 1, 0); c.Kind != cell.Air {
		t.Fatalf("eaten prey cell = %v, want AIR", c.Kind)
	}
	if c := mustGet(t, w, 2, 0); c.Kind != cell.Air {
		t.Fatalf("eaten prey must not also move, found %v at (2,0)", c.Kind)
	}
}
