package network

import (
	"math"
	"math/rand"

	"gorgonia.org/tensor"
)

// heNormal draws a fanIn x fanOut weight matrix from the He-normal
// distribution (std = sqrt(2/fanIn)), matching GoLearn's
// initwfn.He wrapper around gorgonia's G.HeN. Unlike GoLearn, which
// lets Gorgonia pull from the global math/rand source, this samples
// from the caller's own *rand.Rand so weight initialization is
// reproducible from the network-init seed sub-stream.
func heNormal(rng *rand.Rand, fanIn, fanOut int) *tensor.Dense {
	std := math.Sqrt(2.0 / float64(fanIn))
	data := make([]float64, fanIn*fanOut)
	for i := range data {
		data[i] = rng.NormFloat64() * std
	}
	return tensor.New(tensor.WithShape(fanIn, fanOut), tensor.WithBacking(data))
}

// zeros returns an n-length zero vector, used for bias initialization.
func zeros(n int) *tensor.Dense {
	return tensor.New(tensor.WithShape(n), tensor.WithBacking(make([]float64, n)))
}
