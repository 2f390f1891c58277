// Package selfplay implements the training loop: a two-phase
// per-cycle scheduler (parallel self-play game generation against a
// frozen network snapshot, then sequential policy updates), periodic
// checkpointing, and per-cycle metrics. Structurally grounded on
// GoLearn's experiment.Experiment Run/RunEpisode/checkpoint contract
// (experiment/Experiment.go) and its nStep checkpointer
// (experiment/checkpointer/NStep.go), generalized from GoLearn's
// single-agent-single-episode loop to a worker-pool-then-update cycle.
package selfplay

import (
	"github.com/AnthonyKot/chess-rl-sub009/agent/deepq"
	"github.com/AnthonyKot/chess-rl-sub009/optim"
	"github.com/AnthonyKot/chess-rl-sub009/rlenv"
)

// Config holds every value the training core recognizes.
type Config struct {
	HiddenLayers []int
	LearningRate float64
	BatchSize    int
	Gamma        float64

	ExplorationRate  float64
	ExplorationDecay float64

	TargetUpdateFrequency int
	MaxExperienceBuffer   int
	DoubleDQN             bool
	MaxBatchesPerCycle    int // <= 0 means unbounded

	GamesPerCycle      int
	MaxConcurrentGames int
	MaxStepsPerGame    int
	MaxCycles          int

	Reward rlenv.RewardConfig

	EvaluationGames int
	BaselineDepth   int

	Seed *int64 // nil ⇒ nondeterministic

	CheckpointInterval  int
	CheckpointDirectory string

	MaxGradNorm float64

	// FreezePerCycle records that self-play games within a cycle play
	// against a network snapshot frozen at the start of the cycle
	// (true, the default). Loop.RunCycle always plays from such a
	// snapshot; setting this to false is accepted and changes nothing,
	// since no live-network mode exists.
	FreezePerCycle bool
}

// Default returns the configuration table's defaults.
func Default() Config {
	return Config{
		HiddenLayers:          []int{512, 256, 128},
		LearningRate:          0.001,
		BatchSize:             64,
		Gamma:                 0.99,
		ExplorationRate:       0.1,
		ExplorationDecay:      0.995,
		TargetUpdateFrequency: 100,
		MaxExperienceBuffer:   50000,
		DoubleDQN:             true,
		MaxBatchesPerCycle:    0,
		GamesPerCycle:         20,
		MaxConcurrentGames:    4,
		MaxStepsPerGame:       80,
		MaxCycles:             100,
		Reward:                rlenv.DefaultRewardConfig(),
		EvaluationGames:       100,
		BaselineDepth:         2,
		Seed:                  nil,
		CheckpointInterval:    5,
		CheckpointDirectory:   "checkpoints",
		MaxGradNorm:           1.0,
		FreezePerCycle:        true,
	}
}

func (c Config) optimizer() optim.Config {
	cfg := optim.DefaultAdamConfig(c.LearningRate)
	cfg.MaxGradNorm = c.MaxGradNorm
	return cfg
}

func (c Config) agentConfig(features, outputs int) deepq.Config {
	tau := 1.0
	return deepq.Config{
		Features:              features,
		Hidden:                c.HiddenLayers,
		Outputs:               outputs,
		BatchSize:             c.BatchSize,
		Gamma:                 c.Gamma,
		HuberDelta:            1.0,
		DoubleDQN:             c.DoubleDQN,
		Tau:                   tau,
		TargetUpdateFrequency: c.TargetUpdateFrequency,
		Optimizer:             c.optimizer(),
	}
}
