// Package observerproto defines the boundary the external renderer and
// inspector consume. The cell payload inside frames is the packed snapshot
// layout; changing it is a breaking version bump.
package observerproto

// Version of the observer protocol.
const Version = "1.0"

// CellWords and LayoutVersion pin the snapshot wire format: column-major
// W*H records of CellWords little-endian u32 each.
const (
	CellWords     = 18
	LayoutVersion = 1
)

const (
	TypeSubscribe = "SUBSCRIBE"
	TypeFrame     = "FRAME"
)

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`

	// EveryTicks thins the stream: 0 or 1 means every tick.
	EveryTicks int `json:"every_ticks,omitempty"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string      `json:"protocol_version"`
	WorldID         string      `json:"world_id"`
	Tick            uint64      `json:"tick"`
	WorldParams     WorldParams `json:"world_params"`
}

type WorldParams struct {
	W             int   `json:"w"`
	H             int   `json:"h"`
	Seed          int64 `json:"seed"`
	TickRateHz    int   `json:"tick_rate_hz"`
	CellWords     int   `json:"cell_words"`
	LayoutVersion int   `json:"layout_version"`
}

// Server -> Client. Sent every EveryTicks-th tick while subscribed (every
// tick by default); a lagging client may miss frames. Cells is the full
// packed buffer, RLE-compressed (varint pairs, base64).
type FrameMsg struct {
	Type            string  `json:"type"`
	ProtocolVersion string  `json:"protocol_version"`
	Tick            uint64  `json:"tick"`
	Active          int     `json:"active"`
	Food            int     `json:"food"`
	StepMS          float64 `json:"step_ms"`
	Cells           string  `json:"cells"`
}

// HTTP response for GET /v1/cell: one decoded cell for the inspector tooltip.
type CellDetail struct {
	X    int    `json:"x"`
	Y    int    `json:"y"`
	Kind string `json:"kind"`

	Direction   int    `json:"direction,omitempty"`
	Age         int    `json:"age,omitempty"`
	Energy      int    `json:"energy,omitempty"`
	Minerals    int    `json:"minerals,omitempty"`
	Diet        [3]int `json:"diet,omitempty"`
	Color       int    `json:"color,omitempty"`
	CurrentGene int    `json:"current_gene,omitempty"`
	Genome      []int  `json:"genome,omitempty"`
}

// HTTP request body for POST /v1/config.
type ConfigUpdateRequest struct {
	Name   string `json:"name"`
	Values []int  `json:"values"`
}

// ErrorResponse carries a protocol error code on any HTTP endpoint.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}
