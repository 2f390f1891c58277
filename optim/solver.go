// Package optim implements gradient-based parameter updates for the
// network core, shaped after GoLearn's solver package
// (Type/Config/factory idiom, solver/Solver.go) but operating directly
// on gradient and weight tensors pulled off a Gorgonia graph after
// G.Grad, instead of wrapping gorgonia.Solver. Gorgonia's built-in
// solvers keep their Adam/RMSProp moment buffers unexported, so they
// cannot be persisted bit-exactly across a checkpoint/resume boundary;
// optim.Solver keeps the same per-parameter moment state as plain
// slices instead, exposed for serialization through State/Restore.
package optim

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Type names an optimizer algorithm, mirroring GoLearn's
// solver.Type constants.
type Type string

const (
	SGD     Type = "sgd"
	Adam    Type = "adam"
	RMSProp Type = "rmsprop"
)

// Config describes an optimizer's hyperparameters, analogous to
// GoLearn's solver.Config interface (Create/ValidType), but Create
// returns our own Solver rather than a gorgonia.Solver.
type Config struct {
	Type Type

	LearnRate float64

	// Momentum is used by SGD only.
	Momentum float64

	// Beta1, Beta2, Epsilon are used by Adam and RMSProp (Epsilon
	// only). Rho is used by RMSProp only.
	Beta1   float64
	Beta2   float64
	Rho     float64
	Epsilon float64

	// MaxGradNorm clips the joint L2 norm of all gradients to this
	// value before the update is applied; <= 0 disables clipping.
	MaxGradNorm float64

	// L2 is an L2 (weight decay) regularization coefficient added to
	// each gradient before the update; 0 disables it.
	L2 float64
}

// DefaultAdamConfig returns Adam with GoLearn's AdamConfig default
// hyperparameters (solver/AdamSolver.go NewDefaultAdam), plus a
// default gradient clip.
func DefaultAdamConfig(learnRate float64) Config {
	return Config{
		Type:        Adam,
		LearnRate:   learnRate,
		Beta1:       0.9,
		Beta2:       0.999,
		Epsilon:     1e-8,
		MaxGradNorm: 1.0,
	}
}

// Create builds a Solver for the given set of learnable nodes. Every
// node must expose a Gorgonia-tensor-shaped Value; the Solver tracks
// per-node moment buffers matching each node's shape.
func (c Config) Create(params G.Nodes) (*Solver, error) {
	s := &Solver{config: c, params: params}
	for _, p := range params {
		shape := valueShape(p.Value())
		n := numElements(shape)
		s.m = append(s.m, make([]float64, n))
		s.v = append(s.v, make([]float64, n))
	}
	switch c.Type {
	case SGD, Adam, RMSProp:
	default:
		return nil, fmt.Errorf("optim: unknown solver type %q", c.Type)
	}
	return s, nil
}

// Solver applies one optimizer's update rule to a fixed set of
// learnable nodes across repeated Step calls, keeping state (momentum,
// or Adam/RMSProp first/second moment estimates, and a step counter)
// as plain slices so State/Restore can gob-encode them without
// special-casing.
type Solver struct {
	config Config
	params G.Nodes

	// m, v hold one slice per parameter (flattened, row-major), reused
	// as plain momentum for SGD, first/second moment for Adam, and
	// squared-gradient running average (v only) for RMSProp.
	m [][]float64
	v [][]float64
	T int
}

// minLearnRate is the floor Step's instability recovery halves toward
// before giving up and returning ErrInstabilityUnrecoverable.
const minLearnRate = 1e-8

// Step reads each parameter's current gradient (via G.Grad having
// already populated node.Grad()), applies L2 regularization and
// gradient clipping, updates the solver's moment state, and writes the
// new parameter value back via G.Let. It returns the global gradient
// L2 norm measured before clipping, for logging instability
// diagnostics.
//
// If a NaN or Inf turns up anywhere in the gradients or the weights
// they would produce, Step rolls back to its pre-call state (moment
// buffers and step counter untouched, no weight written), halves
// LearnRate, and returns ErrNumericalInstability; once LearnRate is
// already at minLearnRate it returns ErrInstabilityUnrecoverable
// instead of halving further.
func (s *Solver) Step() (float64, error) {
	snapshot := s.State()

	s.T++

	grads := make([][]float64, len(s.params))
	for i, p := range s.params {
		g, err := gradientOf(p)
		if err != nil {
			return 0, fmt.Errorf("optim: step: param %d: %w", i, err)
		}
		if s.config.L2 > 0 {
			weight, err := flatten(p.Value())
			if err != nil {
				return 0, fmt.Errorf("optim: step: param %d: %w", i, err)
			}
			for j := range g {
				g[j] += s.config.L2 * weight[j]
			}
		}
		grads[i] = g
	}

	if !allFinite2D(grads) {
		return s.recoverFromInstability(snapshot)
	}

	norm := globalNorm(grads)
	if math.IsNaN(norm) || math.IsInf(norm, 0) {
		return s.recoverFromInstability(snapshot)
	}
	if s.config.MaxGradNorm > 0 && norm > s.config.MaxGradNorm {
		scale := s.config.MaxGradNorm / (norm + 1e-12)
		for _, g := range grads {
			for j := range g {
				g[j] *= scale
			}
		}
	}

	updated := make([]*tensor.Dense, len(s.params))
	for i, p := range s.params {
		u, err := s.applyRule(i, grads[i], p.Value())
		if err != nil {
			return 0, fmt.Errorf("optim: step: param %d: %w", i, err)
		}
		data, ok := u.Data().([]float64)
		if !ok || !allFinite(data) {
			return s.recoverFromInstability(snapshot)
		}
		updated[i] = u
	}

	for i, p := range s.params {
		if err := G.Let(p, updated[i]); err != nil {
			return 0, fmt.Errorf("optim: step: write param %d: %w", i, err)
		}
	}

	return norm, nil
}

// recoverFromInstability restores the solver to snapshot (undoing this
// Step's T increment and any moment-buffer mutation applyRule already
// made) and either halves LearnRate and returns ErrNumericalInstability,
// or, if LearnRate is already at minLearnRate, returns
// ErrInstabilityUnrecoverable without halving further.
func (s *Solver) recoverFromInstability(snapshot State) (float64, error) {
	if err := s.Restore(snapshot); err != nil {
		return 0, fmt.Errorf("optim: step: instability rollback: %w", err)
	}
	if s.config.LearnRate <= minLearnRate {
		return 0, fmt.Errorf("optim: step: %w (learn rate already at floor %g)", ErrInstabilityUnrecoverable, minLearnRate)
	}
	s.config.LearnRate /= 2
	return 0, fmt.Errorf("optim: step: %w (learn rate halved to %g)", ErrNumericalInstability, s.config.LearnRate)
}

// State is the gob-serializable snapshot of a Solver's moment buffers
// and step counter, so a checkpoint can carry optimizer state and a
// resumed run continues the same Adam/RMSProp trajectory rather than
// restarting it cold. m and v are unexported on Solver itself, so
// State/Restore are the only way to move this state across a
// checkpoint boundary.
type State struct {
	M [][]float64
	V [][]float64
	T int
}

// State returns a copy of the solver's current moment buffers.
func (s *Solver) State() State {
	st := State{M: make([][]float64, len(s.m)), V: make([][]float64, len(s.v)), T: s.T}
	for i, row := range s.m {
		st.M[i] = append([]float64{}, row...)
	}
	for i, row := range s.v {
		st.V[i] = append([]float64{}, row...)
	}
	return st
}

// IsFinite reports whether every moment-buffer value in st is finite,
// i.e. this state is safe to write to a checkpoint. NaNs must never be
// persisted: a checkpoint loaded back from one would poison every
// update downstream of Restore.
func (st State) IsFinite() bool {
	return allFinite2D(st.M) && allFinite2D(st.V)
}

// Restore replaces the solver's moment buffers and step counter with a
// previously saved State. The shape (number of parameters and their
// flattened lengths) must match the solver's own params, exactly as
// network.Load requires architecture-matching checkpoints.
func (s *Solver) Restore(st State) error {
	if len(st.M) != len(s.m) || len(st.V) != len(s.v) {
		return fmt.Errorf("optim: restore: parameter count mismatch (got %d/%d, want %d/%d)", len(st.M), len(st.V), len(s.m), len(s.v))
	}
	for i := range st.M {
		if len(st.M[i]) != len(s.m[i]) || len(st.V[i]) != len(s.v[i]) {
			return fmt.Errorf("optim: restore: param %d shape mismatch", i)
		}
	}
	for i := range st.M {
		copy(s.m[i], st.M[i])
		copy(s.v[i], st.V[i])
	}
	s.T = st.T
	return nil
}

func (s *Solver) applyRule(i int, grad []float64, current G.Value) (*tensor.Dense, error) {
	weight, err := flatten(current)
	if err != nil {
		return nil, err
	}
	shape := valueShape(current)
	out := make([]float64, len(weight))

	switch s.config.Type {
	case SGD:
		mom := s.m[i]
		for j := range weight {
			mom[j] = s.config.Momentum*mom[j] + s.config.LearnRate*grad[j]
			out[j] = weight[j] - mom[j]
		}
	case Adam:
		m, v := s.m[i], s.v[i]
		b1, b2 := s.config.Beta1, s.config.Beta2
		biasCorr1 := 1 - pow(b1, s.T)
		biasCorr2 := 1 - pow(b2, s.T)
		for j := range weight {
			m[j] = b1*m[j] + (1-b1)*grad[j]
			v[j] = b2*v[j] + (1-b2)*grad[j]*grad[j]
			mHat := m[j] / biasCorr1
			vHat := v[j] / biasCorr2
			out[j] = weight[j] - s.config.LearnRate*mHat/(sqrt(vHat)+s.config.Epsilon)
		}
	case RMSProp:
		v := s.v[i]
		rho := s.config.Rho
		for j := range weight {
			v[j] = rho*v[j] + (1-rho)*grad[j]*grad[j]
			out[j] = weight[j] - s.config.LearnRate*grad[j]/(sqrt(v[j])+s.config.Epsilon)
		}
	default:
		return nil, fmt.Errorf("optim: unknown solver type %q", s.config.Type)
	}

	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(out)), nil
}
