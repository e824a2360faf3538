package configfile

import (
	"encoding/json"
)

// Trace captures how each scoped layer contributed to one key.
type Trace struct {
	Key    string       `json:"key"`
	Layers []Provenance `json:"layers"`
}

// Provenance details one layer's contribution to a traced key.
type Provenance struct {
	Scope      Scope    `json:"scope"`
	SnapshotID string   `json:"snapshot_id,omitempty"`
	Key        string   `json:"key"`
	Values     []string `json:"values,omitempty"`
	Found      bool     `json:"found"`
}

// Effective returns the layer whose values win, i.e. the strongest layer
// that defines the key.
func (t Trace) Effective() (Provenance, bool) {
	for _, layer := range t.Layers {
		if layer.Found {
			return layer, true
		}
	}
	return Provenance{}, false
}

// ToJSON serialises the trace for logging or transport.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON decodes a payload produced by ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}
