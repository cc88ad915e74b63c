package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"evogrid.ai/internal/sim/cell"
)

func (w *World) CurrentTick() uint64 { return w.tick.Load() }

func (w *World) Config() WorldConfig { return w.cfg }

// Get decodes the current cell at (x, y). Unlike kernel-internal reads it
// does not wrap or clamp: callers asking for coordinates outside the world
// get ErrOutOfRange and no side effects.
func (w *World) Get(x, y int) (cell.Cell, error) {
	if x < 0 || x >= w.cfg.W || y < 0 || y >= w.cfg.H {
		return cell.Cell{}, fmt.Errorf("%w: (%d, %d) outside %dx%d", ErrOutOfRange, x, y, w.cfg.W, w.cfg.H)
	}
	return cell.Unpack(w.next[w.index(x, y)]), nil
}

// Snapshot exposes the packed current buffer: column-major W*H records of 18
// little-endian u32 words. Callers must treat it as read-only; it is only
// stable between steps.
func (w *World) Snapshot() []cell.Packed { return w.next }

// StateDigest hashes the current buffer. Two worlds with equal digests at
// every tick are running the same simulation.
func (w *World) StateDigest() string {
	h := sha256.New()
	var tmp [4]byte
	for i := range w.next {
		for _, word := range w.next[i] {
			binary.LittleEndian.PutUint32(tmp[:], word)
			h.Write(tmp[:])
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}

// StepOnce advances one tick and reports the resulting tick and digest, the
// same shape replay tooling and determinism tests consume.
func (w *World) StepOnce() (tick uint64, digest string) {
	w.Step()
	return w.tick.Load(), w.StateDigest()
}

// SetTickSink installs a per-tick stats callback, invoked by the server loop
// after each step. Pass nil to detach.
func (w *World) SetTickSink(fn func(TickLogEntry)) { w.tickSink = fn }
