package world

// WorldMetrics is a thread-safe read-only view of key runtime signals. It is
// updated from the step path and read from HTTP handlers and tests.
type WorldMetrics struct {
	Tick uint64 `json:"tick"`

	Active int `json:"active"`
	Food   int `json:"food"`

	Observers int `json:"observers"`

	StepMS float64 `json:"step_ms"`
}

func (w *World) Metrics() WorldMetrics {
	if w == nil {
		return WorldMetrics{}
	}
	v := w.metrics.Load()
	if v == nil {
		return WorldMetrics{}
	}
	m, ok := v.(WorldMetrics)
	if !ok {
		return WorldMetrics{}
	}
	return m
}

func (w *World) publishMetrics(stepMS float64) {
	w.metrics.Store(WorldMetrics{
		Tick:      w.tick.Load(),
		Active:    w.activeCount,
		Food:      w.foodCount,
		Observers: len(w.observers),
		StepMS:    stepMS,
	})
}
