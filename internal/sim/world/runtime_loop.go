package world

import (
	"context"
	"time"

	"evogrid.ai/internal/sim/cell"
)

// ObserverJoinRequest subscribes a renderer/inspector connection to the frame
// stream. Out receives encoded frames; slow consumers drop to the latest.
type ObserverJoinRequest struct {
	Out  chan []byte
	Resp chan ObserverJoinResponse
}

type ObserverJoinResponse struct {
	ID   uint64
	Tick uint64
}

type configReq struct {
	name string
	vals []int
	resp chan error
}

type cellReq struct {
	x, y int
	resp chan cellResp
}

type cellResp struct {
	c   cell.Cell
	err error
}

type resetReq struct {
	req  ResetRequest
	resp chan struct{}
}

// Run owns the world: it steps at the configured tick rate and serializes
// every external request at tick boundaries, so the kernel itself never needs
// locks. Get/SetConfig/Reset arrive over channels and are answered between
// steps.
func (w *World) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(w.cfg.TickRateHz)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stop:
			return nil
		case req := <-w.observerJoin:
			w.nextObserverID++
			id := w.nextObserverID
			w.observers[id] = req.Out
			if req.Resp != nil {
				req.Resp <- ObserverJoinResponse{ID: id, Tick: w.tick.Load()}
			}
		case id := <-w.observerLeave:
			delete(w.observers, id)
		case req := <-w.configReq:
			err := w.SetConfig(req.name, req.vals...)
			if err == nil && req.name == "TICK_RATE_HZ" {
				ticker.Reset(time.Second / time.Duration(w.cfg.TickRateHz))
			}
			req.resp <- err
		case req := <-w.cellReq:
			c, err := w.Get(req.x, req.y)
			req.resp <- cellResp{c: c, err: err}
		case req := <-w.resetReq:
			w.Reset(req.req)
			if req.resp != nil {
				req.resp <- struct{}{}
			}
		case <-ticker.C:
			w.Step()
			m := w.Metrics()
			if w.tickSink != nil {
				w.tickSink(TickLogEntry{Tick: m.Tick, Active: m.Active, Food: m.Food, StepMS: m.StepMS, Digest: w.StateDigest()})
			}
			if len(w.observers) > 0 {
				frame := w.encodeFrame(m.StepMS)
				for _, out := range w.observers {
					sendLatest(out, frame)
				}
			}
		}
	}
}

func (w *World) Stop() { close(w.stop) }

// Channel accessors for the transports.
func (w *World) ObserverJoin() chan<- ObserverJoinRequest { return w.observerJoin }
func (w *World) ObserverLeave() chan<- uint64             { return w.observerLeave }

// GetAsync fetches one decoded cell through the loop, safe while stepping.
func (w *World) GetAsync(x, y int) (cell.Cell, error) {
	resp := make(chan cellResp, 1)
	w.cellReq <- cellReq{x: x, y: y, resp: resp}
	r := <-resp
	return r.c, r.err
}

// SetConfigAsync applies one config update through the loop at the next tick
// boundary.
func (w *World) SetConfigAsync(name string, vals ...int) error {
	resp := make(chan error, 1)
	w.configReq <- configReq{name: name, vals: vals, resp: resp}
	return <-resp
}

// ResetAsync requests a reset through the loop and waits for it.
func (w *World) ResetAsync(req ResetRequest) {
	resp := make(chan struct{}, 1)
	w.resetReq <- resetReq{req: req, resp: resp}
	<-resp
}

// sendLatest delivers b without blocking: if the consumer lags one frame is
// dropped so it always sees the freshest state.
func sendLatest(ch chan []byte, b []byte) {
	select {
	case ch <- b:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- b:
	default:
	}
}
