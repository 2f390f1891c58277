package network

import G "gorgonia.org/gorgonia"

// SelectedQ gathers, for each row of prediction, the Q-value at the
// column selectedMask marks with a 1 and every other column with a
// 0 (an Outputs-wide one-hot per row). The caller builds selectedMask
// host-side from the batch's chosen actions and feeds it with G.Let
// before running the VM, the same indicator-matrix trick GoLearn uses
// in agent/nonlinear/discrete/deepq/DeepQ.go to pull out per-sample
// action values without a gather op.
func SelectedQ(prediction, selectedMask *G.Node) (*G.Node, error) {
	masked, err := G.HadamardProd(prediction, selectedMask)
	if err != nil {
		return nil, err
	}
	return G.Sum(masked, 1)
}

// HuberLoss builds the pseudo-Huber loss between predicted and target,
// both (batch,) vectors, reduced to a mean scalar:
//
//	loss = delta^2 * (sqrt(1 + (diff/delta)^2) - 1)
//
// This is the standard smooth, everywhere-differentiable stand-in for
// the piecewise Huber loss (it has the same quadratic-near-zero,
// linear-in-the-tails shape) built only from ops GoLearn's graphs
// already exercise elsewhere (Sub, Mul, Add, Pow) rather than the
// clamp/select ops exact Huber needs, which Gorgonia exposes only as
// axis-reductions, not an elementwise min of two nodes.
func HuberLoss(predicted, target *G.Node, delta float64) (*G.Node, error) {
	diff, err := G.Sub(predicted, target)
	if err != nil {
		return nil, err
	}
	scaled, err := G.Mul(diff, G.NewConstant(1.0/delta))
	if err != nil {
		return nil, err
	}
	scaledSq, err := G.Square(scaled)
	if err != nil {
		return nil, err
	}
	onePlus, err := G.Add(scaledSq, G.NewConstant(1.0))
	if err != nil {
		return nil, err
	}
	root, err := G.Pow(onePlus, G.NewConstant(0.5))
	if err != nil {
		return nil, err
	}
	shifted, err := G.Sub(root, G.NewConstant(1.0))
	if err != nil {
		return nil, err
	}
	perSample, err := G.Mul(shifted, G.NewConstant(delta*delta))
	if err != nil {
		return nil, err
	}
	return G.Mean(perSample)
}

// MSELoss builds mean-squared-error loss between predicted and target
// (batch,) vectors, offered alongside HuberLoss as an alternative
// configurable loss function.
func MSELoss(predicted, target *G.Node) (*G.Node, error) {
	diff, err := G.Sub(predicted, target)
	if err != nil {
		return nil, err
	}
	sq, err := G.Square(diff)
	if err != nil {
		return nil, err
	}
	return G.Mean(sq)
}
