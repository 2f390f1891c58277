package network

import G "gorgonia.org/gorgonia"

// activationKind names an activation function so it can round-trip
// through gob without serializing a Go closure. Only ReLU (hidden
// layers) and linear/identity (the output layer) are needed here; this
// mirrors GoLearn's network.Activation type, trimmed to those two
// kinds.
type activationKind string

const (
	reluKind     activationKind = "relu"
	identityKind activationKind = "identity"
)

// Activation wraps a Gorgonia graph op so it can be attached to a layer
// and also identified for serialization, per
// network/Activations.go in GoLearn.
type Activation struct {
	kind activationKind
}

// ReLU returns the rectified-linear activation.
func ReLU() *Activation { return &Activation{kind: reluKind} }

// Identity returns the linear (no-op) activation used on the output
// layer.
func Identity() *Activation { return &Activation{kind: identityKind} }

func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	switch a.kind {
	case reluKind:
		return G.Rectify(x)
	case identityKind, "":
		return x, nil
	default:
		panic("network: unknown activation kind " + string(a.kind))
	}
}

// IsIdentity reports whether a is the linear activation.
func (a *Activation) IsIdentity() bool {
	return a == nil || a.kind == identityKind || a.kind == ""
}

func (a *Activation) String() string {
	return string(a.kind)
}
