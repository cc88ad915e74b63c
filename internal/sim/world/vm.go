package world

import "evogrid.ai/internal/sim/cell"

// Gene codes. Bytes 0..63 are unconditional relative jumps; bytes past the
// table are inert and just advance.
const (
	geneJumpMax           = 63
	geneMoveForward       = 64
	geneTurnCCW           = 65
	geneTurnCW            = 66
	geneEatForward        = 67
	geneReproduceForward  = 68
	geneReproduceBackward = 69
	genePhotosynthesize   = 70
	geneCheckForward      = 71
	geneCheckEnergy       = 72
	geneConvertMinerals   = 73
	numGeneCodes          = 74
)

// getArg reads the k-th byte after the current gene, wrapping the genome.
func getArg(c *cell.Cell, k int) byte {
	return c.Genome[(int(c.CurrentGene)+k)%cell.GenomeLen]
}

func satIncr(v uint8) uint8 {
	if v >= 3 {
		return 3
	}
	return v + 1
}

// stepActive executes one gene of the node at (x, y) plus bookkeeping and
// writes the outcome into next. A node that is eaten this tick erases itself
// before its gene would run.
func (w *World) stepActive(x, y int, out *stripeOut) {
	idx := w.index(x, y)
	if w.isEaten(x, y) {
		w.next[idx] = cell.AirCell
		return
	}
	c := cell.Unpack(w.prev[idx])
	energy := int(c.Energy)
	minerals := int(c.Minerals)
	advance := 1
	newX, newY := x, y

	switch op := int(c.Genome[c.CurrentGene]); {
	case op <= geneJumpMax:
		if op != 0 {
			advance = op
		}
	case op == geneMoveForward:
		dx, dy := c.Dir.Delta()
		if w.canMove(energy, x, y, x+dx, y+dy) {
			newX, newY = w.wrapX(x+dx), y+dy
		}
	case op == geneTurnCCW:
		c.Dir = (c.Dir + 1) & 3
	case op == geneTurnCW:
		c.Dir = (c.Dir + 3) & 3
	case op == geneEatForward:
		dx, dy := c.Dir.Delta()
		t := w.readPrev(x+dx, y+dy)
		if t.Kind() >= cell.Food {
			energy += int(t.Energy())
			c.Diet.Eat = satIncr(c.Diet.Eat)
			advance = int(getArg(&c, 1))
		} else {
			advance = int(getArg(&c, 2))
		}
	case op == geneReproduceForward:
		advance = w.reproduce(&c, x, y, &energy, c.Dir, out)
	case op == geneReproduceBackward:
		advance = w.reproduce(&c, x, y, &energy, c.Dir.Opposite(), out)
	case op == genePhotosynthesize:
		if sun := w.cfg.SunAt(y); sun > 0 {
			energy += sun
			c.Diet.Photo = satIncr(c.Diet.Photo)
		}
	case op == geneCheckForward:
		advance = w.checkForward(&c, x, y)
	case op == geneCheckEnergy:
		// Both arms read slot 2. The original behaves this way and genomes
		// evolve against it, so it is preserved, not fixed.
		if energy > int(getArg(&c, 1)) {
			advance = int(getArg(&c, 2))
		} else {
			advance = int(getArg(&c, 2))
		}
	case op == geneConvertMinerals:
		if minerals > 0 {
			energy += minerals * w.cfg.MineralEnergy
			minerals = 0
			c.Diet.Mineral = satIncr(c.Diet.Mineral)
		}
	}

	// Bookkeeping, in fixed order: gene pointer, upkeep, mineral intake, age.
	c.CurrentGene = uint8((int(c.CurrentGene) + advance) % cell.GenomeLen)
	energy--
	if energy > w.cfg.NodeMaxEnergy {
		energy = w.cfg.NodeMaxEnergy
	}
	minerals += w.cfg.MineralAt(newY)
	if minerals > w.cfg.NodeMaxMinerals {
		minerals = w.cfg.NodeMaxMinerals
	}
	age := int(c.Age) + 1

	var packed cell.Packed
	if energy <= 0 || age > w.cfg.NodeMaxAge {
		packed = cell.Pack(cell.Cell{Kind: cell.Food, Energy: uint8(w.cfg.FoodEnergy)})
	} else {
		c.Energy = uint8(energy)
		c.Minerals = uint8(minerals)
		c.Age = uint16(age)
		packed = cell.Pack(c)
	}

	if newX == x && newY == y {
		w.next[idx] = packed
		return
	}
	w.next[idx] = cell.AirCell
	out.remote = append(out.remote, remoteWrite{idx: w.index(newX, newY), p: packed})
}

func (w *World) checkForward(c *cell.Cell, x, y int) int {
	dx, dy := c.Dir.Delta()
	t := w.readPrev(x+dx, y+dy)
	switch t.Kind() {
	case cell.Active:
		if cell.Distance(c.Genome, t.Genome()) <= w.cfg.RelativeThreshold {
			return int(getArg(c, 1))
		}
		return int(getArg(c, 2))
	case cell.Food:
		return int(getArg(c, 3))
	case cell.Air:
		return int(getArg(c, 4))
	}
	return int(getArg(c, 5)) // WALL
}

// reproduce splits off a child into the adjacent cell in dir. The child gets
// half the parent's energy after the reproduction cost; the parent pays that
// half whether or not a rival ends up overwriting the child.
func (w *World) reproduce(c *cell.Cell, x, y int, energy *int, dir cell.Direction, out *stripeOut) int {
	half := (*energy - w.cfg.ReproductionCost) / 2
	if half <= 0 {
		return int(getArg(c, 3))
	}
	dx, dy := dir.Delta()
	cx, cy := x+dx, y+dy
	if !w.canMove(*energy, x, y, cx, cy) {
		return int(getArg(c, 3))
	}

	idx := w.index(x, y)
	genome := c.Genome
	color := c.Color
	if w.randRange(idx, 0, 100) < w.cfg.MutationRatePct {
		gi := w.randRange(idx, 0, cell.GenomeLen)
		genome[gi] = byte(w.randRange(idx, 0, numGeneCodes))
		color++
	}
	child := cell.Cell{
		Kind:        cell.Active,
		Dir:         c.Dir,
		Energy:      uint8(half),
		Color:       color,
		CurrentGene: uint8(int(getArg(c, 1)) % cell.GenomeLen),
		Genome:      genome,
	}
	out.remote = append(out.remote, remoteWrite{idx: w.index(w.wrapX(cx), cy), p: cell.Pack(child)})
	*energy -= half
	return int(getArg(c, 2))
}

// stepFood handles a falling food cell: eaten food erases, food on the floor
// row dissolves, otherwise it drops one row when it wins the slot below.
func (w *World) stepFood(x, y int, out *stripeOut) {
	idx := w.index(x, y)
	if w.isEaten(x, y) {
		w.next[idx] = cell.AirCell
		return
	}
	if y+1 >= w.cfg.H {
		w.next[idx] = cell.AirCell
		return
	}
	f := w.prev[idx]
	if w.canMove(int(f.Energy()), x, y, x, y+1) {
		w.next[idx] = cell.AirCell
		out.remote = append(out.remote, remoteWrite{idx: w.index(x, y+1), p: f})
		return
	}
	w.next[idx] = f
}
