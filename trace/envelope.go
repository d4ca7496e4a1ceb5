// Package trace records matches: a length-prefixed JSON envelope stream,
// zstd-compressed on disk and mirrored live to websocket observers.
package trace

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

// maxFrame bounds a single envelope. A round record of a full 64x64 match
// stays well below it.
const maxFrame = 16 << 20

// Envelope is one framed trace message. Data is kept raw so readers can
// defer decoding to the concrete payload type. Seq is stamped by the
// Recorder, starting at 1; zero means the envelope was never recorded.
type Envelope struct {
	Seq  uint64          `json:"seq,omitempty"`
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func NewEnvelope(msgType string, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal data: %w", err)
	}
	return Envelope{Type: msgType, Data: raw}, nil
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("decode %s #%d: %w", e.Type, e.Seq, err)
	}
	return nil
}

// ReadEnvelope reads one frame: a 4-byte little-endian length, then the JSON
// envelope. io.EOF is returned only when the stream ends between frames.
func ReadEnvelope(r io.Reader) (Envelope, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		if err == io.EOF {
			return Envelope{}, io.EOF
		}
		return Envelope{}, fmt.Errorf("read length: %w", err)
	}
	length := binary.LittleEndian.Uint32(prefix[:])
	if length == 0 || length > maxFrame {
		return Envelope{}, fmt.Errorf("frame length %d out of range", length)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return Envelope{}, fmt.Errorf("read payload: %w", err)
	}
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return Envelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}

// WriteEnvelope emits a frame with a single Write, so a frame is never
// interleaved with another writer's on a shared stream.
func WriteEnvelope(w io.Writer, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if len(payload) > maxFrame {
		return fmt.Errorf("frame length %d out of range", len(payload))
	}
	frame := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(payload)), uint32(len(payload)))
	if _, err := w.Write(append(frame, payload...)); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}
