package optim

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func valueShape(v G.Value) tensor.Shape {
	t, ok := v.(tensor.Tensor)
	if !ok {
		return tensor.Shape{1}
	}
	return t.Shape()
}

func numElements(shape tensor.Shape) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

func flatten(v G.Value) ([]float64, error) {
	t, ok := v.(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("optim: unexpected value type %T", v)
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("optim: unexpected backing type %T", t.Data())
	}
	return data, nil
}

// gradientOf reads the gradient most recently computed for node by
// G.Grad, flattened to a plain slice.
func gradientOf(node *G.Node) ([]float64, error) {
	d, err := node.Grad()
	if err != nil {
		return nil, fmt.Errorf("optim: node has no gradient (was G.Grad called?): %w", err)
	}
	t, ok := d.(tensor.Tensor)
	if !ok {
		return nil, fmt.Errorf("optim: unexpected gradient type %T", d)
	}
	data, ok := t.Data().([]float64)
	if !ok {
		return nil, fmt.Errorf("optim: unexpected gradient backing type %T", t.Data())
	}
	// Copy so that clipping/L2 below never mutates the graph's own
	// backing array.
	out := make([]float64, len(data))
	copy(out, data)
	return out, nil
}

func globalNorm(grads [][]float64) float64 {
	sum := 0.0
	for _, g := range grads {
		for _, v := range g {
			sum += v * v
		}
	}
	return math.Sqrt(sum)
}

// allFinite reports whether every value in xs is neither NaN nor Inf.
func allFinite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// allFinite2D is allFinite over a slice of slices, as produced by one
// Step's per-parameter gradients.
func allFinite2D(xss [][]float64) bool {
	for _, xs := range xss {
		if !allFinite(xs) {
			return false
		}
	}
	return true
}

func sqrt(x float64) float64 { return math.Sqrt(x) }
func pow(base float64, exp int) float64 {
	return math.Pow(base, float64(exp))
}
