// Package observer serves the external renderer/inspector boundary: a
// bootstrap endpoint, a websocket frame stream, single-cell reads, and config
// updates. Everything here talks to the world loop over its channels; the
// kernel never sees a connection.
package observer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"evogrid.ai/internal/observerproto"
	"evogrid.ai/internal/protocol"
	"evogrid.ai/internal/sim/cell"
	"evogrid.ai/internal/sim/world"
)

type Server struct {
	world *world.World
	log   *log.Logger

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) BootstrapHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		cfg := s.world.Config()
		writeJSON(rw, http.StatusOK, observerproto.BootstrapResponse{
			ProtocolVersion: observerproto.Version,
			WorldID:         cfg.ID,
			Tick:            s.world.CurrentTick(),
			WorldParams: observerproto.WorldParams{
				W:             cfg.W,
				H:             cfg.H,
				Seed:          cfg.Seed,
				TickRateHz:    cfg.TickRateHz,
				CellWords:     observerproto.CellWords,
				LayoutVersion: observerproto.LayoutVersion,
			},
		})
	}
}

// CellHandler answers GET /v1/cell?x=&y= with the decoded cell, the read the
// inspector tooltip uses. The fetch goes through the world loop so it cannot
// race a step.
func (s *Server) CellHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		x, okX := queryInt(r, "x")
		y, okY := queryInt(r, "y")
		if !okX || !okY {
			writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, "x and y are required integers")
			return
		}
		c, err := s.world.GetAsync(x, y)
		if err != nil {
			writeError(rw, http.StatusNotFound, protocol.ErrOutOfRange, err.Error())
			return
		}
		writeJSON(rw, http.StatusOK, cellDetail(x, y, c))
	}
}

// ConfigHandler applies POST /v1/config updates between steps.
func (s *Server) ConfigHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req observerproto.ConfigUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
			writeError(rw, http.StatusBadRequest, protocol.ErrProtoBadRequest, "body must be {name, values}")
			return
		}
		if err := s.world.SetConfigAsync(req.Name, req.Values...); err != nil {
			code := protocol.ErrInternal
			if errors.Is(err, world.ErrConfigRejected) {
				code = protocol.ErrConfigRejected
			}
			writeError(rw, http.StatusUnprocessableEntity, code, err.Error())
			return
		}
		rw.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) MetricsHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusOK, s.world.Metrics())
	}
}

// StreamHandler upgrades to a websocket and relays frames until the peer
// goes away. The first client message must be a SUBSCRIBE.
func (s *Server) StreamHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub, ok := s.handshake(conn)
		if !ok {
			return
		}

		out := make(chan []byte, 4)
		resp := make(chan world.ObserverJoinResponse, 1)
		s.world.ObserverJoin() <- world.ObserverJoinRequest{Out: out, Resp: resp}
		joined := <-resp
		defer func() { s.world.ObserverLeave() <- joined.ID }()

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		every := sub.EveryTicks
		if every < 1 {
			every = 1
		}
		sent := 0
		for {
			select {
			case <-done:
				return
			case b, ok := <-out:
				if !ok {
					return
				}
				sent++
				if sent%every != 0 {
					continue
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					return
				}
			}
		}
	}
}

func (s *Server) handshake(conn *websocket.Conn) (observerproto.SubscribeMsg, bool) {
	var sub observerproto.SubscribeMsg
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return sub, false
	}
	if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != observerproto.TypeSubscribe {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"),
			time.Now().Add(time.Second))
		return sub, false
	}
	if sub.ProtocolVersion != observerproto.Version {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "protocol version mismatch"),
			time.Now().Add(time.Second))
		return sub, false
	}
	return sub, true
}

func cellDetail(x, y int, c cell.Cell) observerproto.CellDetail {
	d := observerproto.CellDetail{X: x, Y: y, Kind: c.Kind.String()}
	switch c.Kind {
	case cell.Food:
		d.Energy = int(c.Energy)
	case cell.Active:
		d.Direction = int(c.Dir)
		d.Age = int(c.Age)
		d.Energy = int(c.Energy)
		d.Minerals = int(c.Minerals)
		d.Diet = [3]int{int(c.Diet.Eat), int(c.Diet.Photo), int(c.Diet.Mineral)}
		d.Color = int(c.Color)
		d.CurrentGene = int(c.CurrentGene)
		genome := make([]int, len(c.Genome))
		for i, g := range c.Genome {
			genome[i] = int(g)
		}
		d.Genome = genome
	}
	return d
}

func queryInt(r *http.Request, key string) (int, bool) {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0, false
	}
	return n, true
}

func writeJSON(rw http.ResponseWriter, status int, v any) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	_ = json.NewEncoder(rw).Encode(v)
}

func writeError(rw http.ResponseWriter, status int, code, msg string) {
	writeJSON(rw, status, observerproto.ErrorResponse{Code: code, Message: msg})
}
