package deepq

import "github.com/AnthonyKot/chess-rl-sub009/optim"

// Config describes a DeepQ agent's architecture and learning
// hyperparameters, playing the same role as GoLearn's
// deepq.Config (agent/nonlinear/discrete/deepq/DeepQ.go) generalized
// from GoLearn's unbounded-action single-network design to a
// masked 4096-action Double-DQN.
type Config struct {
	Features int
	Hidden   []int
	Outputs  int

	BatchSize  int
	Gamma      float64
	HuberDelta float64

	// DoubleDQN selects the next-state action with the online network
	// and evaluates it with the target network; when false, the
	// next-state action is both selected and evaluated by the target
	// network (vanilla DQN).
	DoubleDQN bool

	// Tau is the target network update rate. Tau >= 1.0 performs a
	// hard copy every TargetUpdateFrequency steps (matching GoLearn's
	// tau == 1.0 convention); 0 < Tau < 1.0 performs a Polyak soft
	// update on the same TargetUpdateFrequency schedule instead.
	Tau                   float64
	TargetUpdateFrequency int

	Optimizer optim.Config
}

// Stats reports the outcome of a single DeepQ.Update call, for the
// self-play loop's per-cycle metrics.
type Stats struct {
	Loss              float64
	GradNorm          float64
	MeanTarget        float64
	NonZeroRewardFrac float64
}
