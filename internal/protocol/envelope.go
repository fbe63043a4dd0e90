package protocol

import "encoding/json"

// Envelope is the standard WebSocket message wrapper. Seq is chosen by the
// client and echoed on the server's reply so requests can be correlated;
// pushed change notifications carry Seq 0.
type Envelope struct {
	Type    string          `json:"type"`
	Seq     uint64          `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEnvelope creates an envelope with a JSON-encoded payload.
func NewEnvelope(typ string, seq uint64, payload interface{}) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: typ, Seq: seq, Payload: data}, nil
}

// MustEnvelope is like NewEnvelope but panics on error.
func MustEnvelope(typ string, seq uint64, payload interface{}) Envelope {
	e, err := NewEnvelope(typ, seq, payload)
	if err != nil {
		panic(err)
	}
	return e
}
