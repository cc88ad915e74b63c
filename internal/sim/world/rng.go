package world

// Each cell owns one xorshift32 stream; a cell's task is the only code that
// steps its slot, so the streams stay deterministic under any worker schedule.

func xorshift32(x uint32) uint32 {
	x ^= x << 13
	x ^= x >> 17
	x ^= x << 5
	return x
}

func (w *World) nextU32(idx int) uint32 {
	x := xorshift32(w.rngState[idx])
	w.rngState[idx] = x
	return x
}

// randRange returns low + next mod (high-low), stepping the cell's stream.
func (w *World) randRange(idx, low, high int) int {
	if high <= low {
		return low
	}
	return low + int(w.nextU32(idx)%uint32(high-low))
}

func drawRange(state *uint32, low, high int) int {
	if high <= low {
		return low
	}
	*state = xorshift32(*state)
	return low + int(*state%uint32(high-low))
}

func mix64(z uint64) uint64 {
	z += 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// seedOne derives a non-zero xorshift state from (seed, salt).
func seedOne(seed int64, salt uint64) uint32 {
	v := uint32(mix64(uint64(seed) ^ salt*0x9e3779b97f4a7c15))
	if v == 0 {
		v = 0x9e3779b9
	}
	return v
}

// seedCellStates fills the per-cell streams. No state may be zero: a zero
// xorshift state is a fixed point.
func seedCellStates(states []uint32, seed int64) {
	for i := range states {
		states[i] = seedOne(seed, uint64(i)+1)
	}
}
