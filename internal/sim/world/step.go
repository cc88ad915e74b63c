package world

import (
	"sync"
	"time"

	"evogrid.ai/internal/sim/cell"
)

type remoteWrite struct {
	idx int
	p   cell.Packed
}

// stripeOut is one worker's scratch: deferred writes outside its own cells.
type stripeOut struct {
	remote []remoteWrite
}

// Step advances the world one tick. The buffers swap, then workers sweep
// column stripes reading only prev: each cell's own slot in next is written
// by its own task, and writes to other positions (a move target, a child, a
// fallen food) are deferred and committed after the barrier in stripe-then-
// origin order. Arbitration makes movement targets unique; the only overlap
// left is a child landing on a slot that another child, a mover or a falling
// food also takes (canMove does not see reproducing parents), where the fixed
// commit order picks the same survivor every run.
func (w *World) Step() {
	start := time.Now()
	w.prev, w.next = w.next, w.prev

	width, height := w.cfg.W, w.cfg.H
	chunk := (width + w.workers - 1) / w.workers

	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		x0 := i * chunk
		x1 := x0 + chunk
		if x1 > width {
			x1 = width
		}
		if x0 >= x1 {
			continue
		}
		wg.Add(1)
		go func(out *stripeOut, x0, x1 int) {
			defer wg.Done()
			out.remote = out.remote[:0]
			for x := x0; x < x1; x++ {
				for y := 0; y < height; y++ {
					idx := w.index(x, y)
					switch w.prev[idx].Kind() {
					case cell.Air:
						w.next[idx] = cell.AirCell
					case cell.Wall:
						w.next[idx] = w.prev[idx]
					case cell.Food:
						w.stepFood(x, y, out)
					case cell.Active:
						w.stepActive(x, y, out)
					}
				}
			}
		}(&w.stripes[i], x0, x1)
	}
	wg.Wait()

	for i := range w.stripes {
		for _, rw := range w.stripes[i].remote {
			w.next[rw.idx] = rw.p
		}
	}

	active, food := 0, 0
	for i := range w.next {
		switch w.next[i].Kind() {
		case cell.Active:
			active++
		case cell.Food:
			food++
		}
	}
	w.activeCount, w.foodCount = active, food

	w.tick.Add(1)
	w.publishMetrics(float64(time.Since(start).Microseconds()) / 1000.0)
}
