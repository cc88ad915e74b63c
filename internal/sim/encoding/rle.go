// Package encoding carries the wire codecs shared by the observer stream and
// its clients.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeWords encodes a word sequence into base64(varint pairs). The pairs
// are (word, run_len) repeated; snapshot buffers are mostly air, so runs of
// zero words dominate.
func EncodeWords(words []uint32) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	i := 0
	for i < len(words) {
		v := words[i]
		run := 1
		for j := i + 1; j < len(words) && words[j] == v; j++ {
			run++
		}

		n := binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])

		i += run
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeWords reverses EncodeWords. want is the expected word count; a frame
// that decodes to any other length is rejected.
func DecodeWords(b64 string, want int) ([]uint32, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, 0, want)
	for i := 0; i < len(raw); {
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if v > 0xFFFFFFFF {
			return nil, fmt.Errorf("word out of range: %d", v)
		}
		if run == 0 || int(run) > want-len(out) {
			return nil, fmt.Errorf("run overflows frame: %d", run)
		}
		for k := 0; k < int(run); k++ {
			out = append(out, uint32(v))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("frame decoded to %d words, want %d", len(out), want)
	}
	return out, nil
}
