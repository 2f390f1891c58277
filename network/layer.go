package network

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// fcLayer is a single fully-connected layer: y = activation(x*W + b).
// Adapted from GoLearn's network/FullyConnected.go fcLayer, trimmed
// to the fields a single-head MLP needs.
type fcLayer struct {
	weights    *G.Node // shape (in, out)
	bias       *G.Node // shape (out)
	activation *Activation
	in, out    int
}

// newLayer creates a layer attached to g, with weights and bias
// initialized from rng (He-normal weights, zero bias).
func newLayer(g *G.ExprGraph, in, out int, act *Activation, rng *rand.Rand, name string) *fcLayer {
	w := G.NewMatrix(g, G.Float64, G.WithShape(in, out), G.WithName(name+"_w"), G.WithValue(heNormal(rng, in, out)))
	b := G.NewVector(g, G.Float64, G.WithShape(out), G.WithName(name+"_b"), G.WithValue(zeros(out)))
	return &fcLayer{weights: w, bias: b, activation: act, in: in, out: out}
}

// cloneTo rebuilds this layer on g, copying weights/bias by value so
// the clone starts out identical but independently trainable. Mirrors
// fcLayer.CloneTo in GoLearn.
func (l *fcLayer) cloneTo(g *G.ExprGraph, name string) *fcLayer {
	w := G.NewMatrix(g, G.Float64, G.WithShape(l.in, l.out), G.WithName(name+"_w"), G.WithValue(l.weights.Value()))
	b := G.NewVector(g, G.Float64, G.WithShape(l.out), G.WithName(name+"_b"), G.WithValue(l.bias.Value()))
	return &fcLayer{weights: w, bias: b, activation: l.activation, in: l.in, out: l.out}
}

func (l *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	xw, err := G.Mul(x, l.weights)
	if err != nil {
		return nil, err
	}
	xwb, err := G.BroadcastAdd(xw, l.bias, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	return l.activation.fwd(xwb)
}

func (l *fcLayer) learnables() G.Nodes {
	return G.Nodes{l.weights, l.bias}
}

// GobEncode gobs the layer's weight and bias values, the way GoLearn's
// fcLayer.GobEncode does: a Node itself isn't serializable,
// only the Value it currently holds.
func (l *fcLayer) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(l.weights.Value()); err != nil {
		return nil, fmt.Errorf("network: gobencode layer weights: %w", err)
	}
	if err := enc.Encode(l.bias.Value()); err != nil {
		return nil, fmt.Errorf("network: gobencode layer bias: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode requires l's weight and bias nodes to already be
// registered with a graph of matching shape; it overwrites their
// values in place, matching GoLearn's fcLayer.GobDecode contract.
func (l *fcLayer) GobDecode(in []byte) error {
	if l.weights == nil || l.bias == nil {
		return fmt.Errorf("network: gobdecode: layer must be initialized before decoding")
	}
	dec := gob.NewDecoder(bytes.NewReader(in))
	var weights *tensor.Dense
	if err := dec.Decode(&weights); err != nil {
		return fmt.Errorf("network: gobdecode layer weights: %w", err)
	}
	if err := G.Let(l.weights, weights); err != nil {
		return fmt.Errorf("network: gobdecode: set weights: %w", err)
	}
	var bias *tensor.Dense
	if err := dec.Decode(&bias); err != nil {
		return fmt.Errorf("network: gobdecode layer bias: %w", err)
	}
	if err := G.Let(l.bias, bias); err != nil {
		return fmt.Errorf("network: gobdecode: set bias: %w", err)
	}
	return nil
}
