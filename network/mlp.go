// Package network implements the Q-value function approximator: a
// single dense feedforward MLP built on a Gorgonia computational
// graph, adapted from GoLearn's network package
// (FullyConnected.go / MultiHeadMLP.go / NeuralNet.go) and collapsed
// from its multi-head, multi-environment design down to a single wide
// 4096-action head.
package network

import (
	"fmt"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP is a feedforward network mapping a Features-length state vector
// to Outputs Q-values, batched over BatchSize rows per forward pass.
type MLP struct {
	g          *G.ExprGraph
	input      *G.Node
	layers     []*fcLayer
	prediction *G.Node

	features, outputs, batchSize int
	hidden                       []int
}

// New builds an MLP with the given hidden layer widths, all ReLU, and
// a final linear layer of width outputs. rng seeds every layer's
// weights (ordinarily the network-init sub-stream from seedmgr).
func New(features int, hidden []int, outputs int, batchSize int, rng *rand.Rand) *MLP {
	g := G.NewGraph()
	input := G.NewMatrix(g, G.Float64, G.WithShape(batchSize, features), G.WithName("input"))

	m := &MLP{g: g, input: input, features: features, outputs: outputs, batchSize: batchSize, hidden: append([]int{}, hidden...)}

	in := features
	x := input
	for i, h := range hidden {
		layer := newLayer(g, in, h, ReLU(), rng, fmt.Sprintf("hidden%d", i))
		m.layers = append(m.layers, layer)
		var err error
		x, err = layer.fwd(x)
		if err != nil {
			panic(fmt.Sprintf("network: building hidden layer %d: %v", i, err))
		}
		in = h
	}
	out := newLayer(g, in, outputs, Identity(), rng, "output")
	m.layers = append(m.layers, out)
	var err error
	x, err = out.fwd(x)
	if err != nil {
		panic(fmt.Sprintf("network: building output layer: %v", err))
	}
	m.prediction = x
	return m
}

// Graph returns the underlying Gorgonia expression graph, for building
// a G.NewTapeMachine or attaching loss nodes.
func (m *MLP) Graph() *G.ExprGraph { return m.g }

// Input returns the input placeholder node; callers feed batched state
// rows into it with G.Let before running the graph's VM.
func (m *MLP) Input() *G.Node { return m.input }

// Prediction returns the final (batch x Outputs) Q-value node.
func (m *MLP) Prediction() *G.Node { return m.prediction }

// Features, Outputs and BatchSize report the network's fixed shape.
func (m *MLP) Features() int  { return m.features }
func (m *MLP) Outputs() int   { return m.outputs }
func (m *MLP) BatchSize() int { return m.batchSize }

// SetInput feeds rows (each of length Features, row count BatchSize)
// into the input placeholder ahead of a VM run.
func (m *MLP) SetInput(rows [][]float64) error {
	if len(rows) != m.batchSize {
		return fmt.Errorf("network: SetInput: got %d rows, want batch size %d", len(rows), m.batchSize)
	}
	flat := make([]float64, 0, m.batchSize*m.features)
	for _, row := range rows {
		if len(row) != m.features {
			return fmt.Errorf("network: SetInput: row length %d, want %d", len(row), m.features)
		}
		flat = append(flat, row...)
	}
	t := tensor.New(tensor.WithShape(m.batchSize, m.features), tensor.WithBacking(flat))
	return G.Let(m.input, t)
}

// PredictionRows reads the prediction node's current value back out as
// BatchSize rows of Outputs Q-values each, after a VM run.
func (m *MLP) PredictionRows() ([][]float64, error) {
	v, ok := m.prediction.Value().(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("network: PredictionRows: unexpected value type %T", m.prediction.Value())
	}
	data, ok := v.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("network: PredictionRows: unexpected backing type %T", v.Data())
	}
	rows := make([][]float64, m.batchSize)
	for i := 0; i < m.batchSize; i++ {
		rows[i] = append([]float64{}, data[i*m.outputs:(i+1)*m.outputs]...)
	}
	return rows, nil
}

// Learnables returns every trainable node (weights and biases) across
// all layers, in a stable layer order, for handing to optim.Config.Create
// or a G.Grad call.
func (m *MLP) Learnables() G.Nodes {
	var ns G.Nodes
	for _, l := range m.layers {
		ns = append(ns, l.learnables()...)
	}
	return ns
}

// CloneWithBatch rebuilds this network on a fresh graph with the same
// learned weights but a different batch size, the way GoLearn's
// NeuralNet.CloneWithBatch is used to build a batch-size-1 policy net
// and a batch-size-N training net sharing one architecture
// (network/NeuralNet.go).
func (m *MLP) CloneWithBatch(batchSize int) *MLP {
	g := G.NewGraph()
	input := G.NewMatrix(g, G.Float64, G.WithShape(batchSize, m.features), G.WithName("input"))

	clone := &MLP{g: g, input: input, features: m.features, outputs: m.outputs, batchSize: batchSize, hidden: append([]int{}, m.hidden...)}
	x := input
	for i, l := range m.layers {
		nl := l.cloneTo(g, fmt.Sprintf("layer%d", i))
		clone.layers = append(clone.layers, nl)
		var err error
		x, err = nl.fwd(x)
		if err != nil {
			panic(fmt.Sprintf("network: cloning layer %d: %v", i, err))
		}
	}
	clone.prediction = x
	return clone
}

// Set copies dest's learnable values from source in place, layer by
// layer. Both networks must share architecture (same layer shapes);
// batch size may differ since only weights/biases are copied. Mirrors
// GoLearn's package-level network.Set helper used for hard target
// network syncs.
func Set(dest, source *MLP) error {
	if len(dest.layers) != len(source.layers) {
		return fmt.Errorf("network: Set: layer count mismatch (%d vs %d)", len(dest.layers), len(source.layers))
	}
	for i := range dest.layers {
		if err := G.Let(dest.layers[i].weights, source.layers[i].weights.Value()); err != nil {
			return fmt.Errorf("network: Set: layer %d weights: %w", i, err)
		}
		if err := G.Let(dest.layers[i].bias, source.layers[i].bias.Value()); err != nil {
			return fmt.Errorf("network: Set: layer %d bias: %w", i, err)
		}
	}
	return nil
}

// Polyak performs a soft target update dest <- tau*source + (1-tau)*dest
// layer by layer, matching GoLearn's package-level network.Polyak
// helper.
func Polyak(dest, source *MLP, tau float64) error {
	if len(dest.layers) != len(source.layers) {
		return fmt.Errorf("network: Polyak: layer count mismatch (%d vs %d)", len(dest.layers), len(source.layers))
	}
	for i := range dest.layers {
		if err := polyakNode(dest.layers[i].weights, source.layers[i].weights, tau); err != nil {
			return fmt.Errorf("network: Polyak: layer %d weights: %w", i, err)
		}
		if err := polyakNode(dest.layers[i].bias, source.layers[i].bias, tau); err != nil {
			return fmt.Errorf("network: Polyak: layer %d bias: %w", i, err)
		}
	}
	return nil
}

func polyakNode(dest, source *G.Node, tau float64) error {
	dt, ok := dest.Value().(tensor.Tensor)
	if !ok {
		return fmt.Errorf("network: Polyak: unexpected dest value type %T", dest.Value())
	}
	st, ok := source.Value().(tensor.Tensor)
	if !ok {
		return fmt.Errorf("network: Polyak: unexpected source value type %T", source.Value())
	}
	dData, ok := dt.Data().([]float64)
	if !ok {
		return fmt.Errorf("network: Polyak: unexpected dest backing type %T", dt.Data())
	}
	sData, ok := st.Data().([]float64)
	if !ok {
		return fmt.Errorf("network: Polyak: unexpected source backing type %T", st.Data())
	}
	blended := make([]float64, len(dData))
	for i := range blended {
		blended[i] = tau*sData[i] + (1-tau)*dData[i]
	}
	next := tensor.New(tensor.WithShape(dt.Shape()...), tensor.WithBacking(blended))
	return G.Let(dest, next)
}
