package world

import (
	"encoding/json"

	"evogrid.ai/internal/observerproto"
	"evogrid.ai/internal/sim/encoding"
)

// encodeFrame serializes the current buffer into one observer frame. The
// scratch slice is reused across ticks; RLE keeps the common all-air runs
// cheap on the wire.
func (w *World) encodeFrame(stepMS float64) []byte {
	flat := w.frameScratch
	for i := range w.next {
		copy(flat[i*len(w.next[i]):], w.next[i][:])
	}
	msg := observerproto.FrameMsg{
		Type:            observerproto.TypeFrame,
		ProtocolVersion: observerproto.Version,
		Tick:            w.tick.Load(),
		Active:          w.activeCount,
		Food:            w.foodCount,
		StepMS:          stepMS,
		Cells:           encoding.EncodeWords(flat),
	}
	b, err := json.Marshal(msg)
	if err != nil {
		// The frame is built from plain values; a marshal failure is a bug.
		panic(err)
	}
	return b
}
