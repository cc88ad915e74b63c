package world

import "evogrid.ai/internal/sim/cell"

// The grid is column-major: index(x, y) = x*H + y. X wraps, Y does not;
// out-of-range Y reads see the WALL sentinel and writes are dropped.

func (w *World) index(x, y int) int { return x*w.cfg.H + y }

func (w *World) wrapX(x int) int {
	x %= w.cfg.W
	if x < 0 {
		x += w.cfg.W
	}
	return x
}

// readPrev reads the snapshot at (x, y).
func (w *World) readPrev(x, y int) *cell.Packed {
	if y < 0 || y >= w.cfg.H {
		return &cell.WallCell
	}
	return &w.prev[w.index(w.wrapX(x), y)]
}

// canMove reports whether an actor at (fromX, fromY) with the given energy
// wins the empty target (toX, toY) this tick. The target must be AIR in the
// snapshot, and the actor must out-bid every rival that could also claim it:
// an ACTIVE neighbour of the target whose current gene is MOVE_FORWARD and
// whose direction points into the target, or a FOOD cell directly above it.
// Ties lose on both sides, which is what makes the writes conflict-free.
func (w *World) canMove(actorEnergy, fromX, fromY, toX, toY int) bool {
	to := w.readPrev(toX, toY)
	if to.Kind() != cell.Air {
		return false
	}
	toX = w.wrapX(toX)
	for d := cell.Direction(0); d < 4; d++ {
		dx, dy := d.Delta()
		nx, ny := toX+dx, toY+dy
		if w.wrapX(nx) == w.wrapX(fromX) && ny == fromY {
			continue
		}
		n := w.readPrev(nx, ny)
		switch n.Kind() {
		case cell.Active:
			if n.CurrentGeneCode() == geneMoveForward && n.Dir() == d.Opposite() {
				if actorEnergy <= int(n.Energy()) {
					return false
				}
			}
		case cell.Food:
			if d == cell.North { // food falls south, so only the cell above competes
				if actorEnergy <= int(n.Energy()) {
					return false
				}
			}
		}
	}
	return true
}

// isEaten reports whether any neighbour is an ACTIVE whose current gene is
// EAT_FORWARD and whose direction faces this cell. The eaten cell erases
// itself; each eater records its gain at its own position, so the two writes
// never collide.
func (w *World) isEaten(x, y int) bool {
	for d := cell.Direction(0); d < 4; d++ {
		dx, dy := d.Delta()
		n := w.readPrev(x+dx, y+dy)
		if n.Kind() == cell.Active && n.CurrentGeneCode() == geneEatForward && n.Dir() == d.Opposite() {
			return true
		}
	}
	return false
}
