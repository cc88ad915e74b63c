package world

// TickLogEntry is one per-tick stats record, written to the run log and the
// tick index. It carries no world state; runs are not resumable from it.
type TickLogEntry struct {
	Tick   uint64  `json:"tick"`
	Active int     `json:"active"`
	Food   int     `json:"food"`
	StepMS float64 `json:"step_ms"`
	Digest string  `json:"digest,omitempty"`
}
