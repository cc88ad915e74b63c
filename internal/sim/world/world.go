// Package world implements the simulation engine: a double-buffered grid of
// packed cells advanced by a data-parallel step kernel. Every cell reads the
// previous tick's snapshot and writes at most two disjoint positions of the
// next; the arbitration rules in this package are the only cross-cell
// coordination.
package world

import (
	"runtime"
	"sync/atomic"

	"evogrid.ai/internal/sim/cell"
)

type World struct {
	cfg WorldConfig

	// WORLD_SIZE updates queue here and apply at the next Reset.
	pendingW, pendingH int

	prev, next []cell.Packed
	rngState   []uint32

	tick atomic.Uint64

	workers int
	stripes []stripeOut

	activeCount int
	foodCount   int

	metrics atomic.Value // WorldMetrics

	frameScratch []uint32

	tickSink func(TickLogEntry)

	// Server-loop channels (see runtime_loop.go).
	stop          chan struct{}
	observerJoin  chan ObserverJoinRequest
	observerLeave chan uint64
	configReq     chan configReq
	cellReq       chan cellReq
	resetReq      chan resetReq

	observers      map[uint64]chan []byte
	nextObserverID uint64
}

// ResetRequest describes a world reset. A nil Genome seeds the default
// all-photosynthesize starting genome.
type ResetRequest struct {
	Seed   int64
	Genome *cell.Genome
}

func New(cfg WorldConfig) (*World, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	w := &World{
		cfg:           cfg,
		stop:          make(chan struct{}),
		observerJoin:  make(chan ObserverJoinRequest, 16),
		observerLeave: make(chan uint64, 16),
		configReq:     make(chan configReq, 16),
		cellReq:       make(chan cellReq, 64),
		resetReq:      make(chan resetReq, 4),
		observers:     map[uint64]chan []byte{},
	}
	w.alloc(cfg.W, cfg.H)
	w.Reset(ResetRequest{Seed: cfg.Seed})
	return w, nil
}

func (w *World) alloc(width, height int) {
	w.cfg.W, w.cfg.H = width, height
	n := width * height
	w.prev = make([]cell.Packed, n)
	w.next = make([]cell.Packed, n)
	w.rngState = make([]uint32, n)
	w.frameScratch = make([]uint32, n*cell.Words)

	w.workers = runtime.GOMAXPROCS(0)
	if w.workers > width {
		w.workers = width
	}
	if w.workers < 1 {
		w.workers = 1
	}
	w.stripes = make([]stripeOut, w.workers)
}

// Reset reseeds the world: both buffers identical, tick zeroed, rng streams
// reseeded, START_NODE_NUM nodes scattered over the sunlit band.
func (w *World) Reset(req ResetRequest) {
	if w.pendingW > 0 && w.pendingH > 0 {
		w.alloc(w.pendingW, w.pendingH)
		w.pendingW, w.pendingH = 0, 0
	}
	w.cfg.Seed = req.Seed
	for i := range w.next {
		w.next[i] = cell.AirCell
	}

	seedCellStates(w.rngState, req.Seed)

	genome := defaultGenome()
	if req.Genome != nil {
		genome = *req.Genome
	}

	band := w.cfg.SunAmount * w.cfg.SunLevelHeight
	if band > w.cfg.H {
		band = w.cfg.H
	}
	if band < 1 {
		band = 1
	}

	// A scratch stream keeps placement independent of the per-cell streams.
	place := seedOne(req.Seed, 0x5eed)
	seeded := 0
	for attempts := 0; seeded < w.cfg.StartNodeNum && attempts < w.cfg.StartNodeNum*64+256; attempts++ {
		x := drawRange(&place, 0, w.cfg.W)
		y := drawRange(&place, 0, band)
		idx := w.index(x, y)
		if w.next[idx].Kind() != cell.Air {
			continue
		}
		w.next[idx] = cell.Pack(cell.Cell{
			Kind:   cell.Active,
			Dir:    cell.South,
			Energy: uint8(w.cfg.StartEnergy),
			Genome: genome,
		})
		seeded++
	}

	copy(w.prev, w.next)
	w.tick.Store(0)
	w.activeCount = seeded
	w.foodCount = 0
	w.publishMetrics(0)
}

func defaultGenome() cell.Genome {
	var g cell.Genome
	for i := range g {
		g[i] = genePhotosynthesize
	}
	return g
}
