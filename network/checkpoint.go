package network

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
)

// ErrIncompatibleCheckpoint is returned by Load when the architecture
// recorded in a checkpoint does not match the receiving MLP's shape:
// loading into a network of the wrong architecture is a checkpoint
// error, not silently tolerated.
var ErrIncompatibleCheckpoint = errors.New("network: checkpoint architecture does not match this network")

type checkpointHeader struct {
	Features int
	Hidden   []int
	Outputs  int
}

func (m *MLP) header() checkpointHeader {
	return checkpointHeader{Features: m.features, Hidden: append([]int{}, m.hidden...), Outputs: m.outputs}
}

func (h checkpointHeader) equal(o checkpointHeader) bool {
	if h.Features != o.Features || h.Outputs != o.Outputs || len(h.Hidden) != len(o.Hidden) {
		return false
	}
	for i := range h.Hidden {
		if h.Hidden[i] != o.Hidden[i] {
			return false
		}
	}
	return true
}

// Save gobs this network's architecture header followed by every
// layer's weights and bias, in layer order.
func (m *MLP) Save() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(m.header()); err != nil {
		return nil, fmt.Errorf("network: save header: %w", err)
	}
	for i, l := range m.layers {
		if err := enc.Encode(l); err != nil {
			return nil, fmt.Errorf("network: save layer %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// Load restores weights and biases into m from a checkpoint produced
// by Save, failing with ErrIncompatibleCheckpoint if the architecture
// recorded in the checkpoint doesn't match m's own shape.
func (m *MLP) Load(data []byte) error {
	dec := gob.NewDecoder(bytes.NewReader(data))
	var got checkpointHeader
	if err := dec.Decode(&got); err != nil {
		return fmt.Errorf("network: load header: %w", err)
	}
	if !m.header().equal(got) {
		return ErrIncompatibleCheckpoint
	}
	for i, l := range m.layers {
		if err := dec.Decode(l); err != nil {
			return fmt.Errorf("network: load layer %d: %w", i, err)
		}
	}
	return nil
}
