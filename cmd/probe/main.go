// probe tails a running server's observer stream and prints population stats.
// It is the smallest possible stand-in for the real renderer.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/gorilla/websocket"

	"evogrid.ai/internal/observerproto"
	"evogrid.ai/internal/sim/encoding"
)

func main() {
	var (
		url   = flag.String("url", "ws://localhost:8080/v1/observer/stream", "observer stream url")
		words = flag.Int("words", 0, "expected frame words (W*H*18); 0 skips cell decoding")
		every = flag.Int("every", 1, "print every n-th frame")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[probe] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	sub := observerproto.SubscribeMsg{
		Type:            observerproto.TypeSubscribe,
		ProtocolVersion: observerproto.Version,
	}
	if err := conn.WriteJSON(sub); err != nil {
		logger.Fatalf("send SUBSCRIBE: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)

	n := 0
	for {
		select {
		case <-stop:
			return
		default:
		}

		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var frame observerproto.FrameMsg
		if err := json.Unmarshal(msg, &frame); err != nil || frame.Type != observerproto.TypeFrame {
			continue
		}
		n++
		if n%*every != 0 {
			continue
		}
		if *words > 0 {
			if _, err := encoding.DecodeWords(frame.Cells, *words); err != nil {
				logger.Printf("tick=%d BAD FRAME: %v", frame.Tick, err)
				continue
			}
		}
		logger.Printf("tick=%d active=%d food=%d step=%.2fms", frame.Tick, frame.Active, frame.Food, frame.StepMS)
	}
}
