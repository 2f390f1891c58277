package selfplay

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnthonyKot/chess-rl-sub009/optim"
	"github.com/AnthonyKot/chess-rl-sub009/replay"
	"github.com/AnthonyKot/chess-rl-sub009/seedmgr"
)

// checkpointVersion tags the envelope format so a future incompatible
// layout can be detected explicitly rather than silently misread.
const checkpointVersion = 1

// envelope is the full on-disk training-state record: architecture
// descriptor, weights, optimizer state, cycle number, epsilon, replay
// buffer contents, the master seed each sub-stream is re-derived from,
// and a version tag.
//
// The architecture descriptor lives inside Network (network.MLP.Save's
// own header); Optimizer carries the solver's moment buffers and step
// count so a resumed run continues the same Adam/RMSProp trajectory
// instead of restarting it cold. Buffer carries the replay buffer's
// contents so sampling after Resume draws from the same experiences an
// uninterrupted run would have had, rather than starting from empty;
// the buffer's own sampling RNG is not persisted here because
// Loop.train re-derives it fresh every cycle from (MasterSeed, Cycle).
type envelope struct {
	Version    int
	Cycle      int
	Epsilon    float64
	Network    []byte
	Optimizer  optim.State
	Buffer     []replay.Experience
	MasterSeed int64
}

// Checkpoint atomically writes the current training state to
// <directory>/cycle-<N>.ckpt via a temp file plus os.Rename, matching
// GoLearn's experiment/checkpointer.nStep (gob-encode-to-file) but
// with an atomic rename so a crash mid-write never leaves a truncated
// file where a resume would read it.
func (l *Loop) Checkpoint(directory string) (string, error) {
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return "", fmt.Errorf("selfplay: checkpoint: %w", err)
	}

	weights, err := l.agent.SaveWeights()
	if err != nil {
		return "", fmt.Errorf("selfplay: checkpoint: %w", err)
	}

	optState := l.agent.OptimizerState()
	if !optState.IsFinite() {
		return "", fmt.Errorf("selfplay: checkpoint: %w", optim.ErrNumericalInstability)
	}

	env := envelope{
		Version:    checkpointVersion,
		Cycle:      l.cycle,
		Epsilon:    l.epsilon,
		Network:    weights,
		Optimizer:  optState,
		Buffer:     l.buffer.Items(),
		MasterSeed: l.seeds.MasterSeed(),
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(env); err != nil {
		return "", fmt.Errorf("selfplay: checkpoint: encode: %w", err)
	}

	final := filepath.Join(directory, fmt.Sprintf("cycle-%04d.ckpt", l.cycle))
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("selfplay: checkpoint: write: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return "", fmt.Errorf("selfplay: checkpoint: rename: %w", err)
	}
	return final, nil
}

// Resume restores cycle, epsilon, network weights, optimizer state,
// and replay buffer contents from a checkpoint written by Checkpoint.
// The master seed recorded in the checkpoint re-derives every
// sub-stream so that, from the next cycle onward, training reproduces
// the trajectory an uninterrupted run would have taken.
func (l *Loop) Resume(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("selfplay: resume: %w", err)
	}
	var env envelope
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&env); err != nil {
		return fmt.Errorf("selfplay: resume: decode: %w", err)
	}
	if env.Version != checkpointVersion {
		return fmt.Errorf("selfplay: resume: unsupported checkpoint version %d", env.Version)
	}

	if err := l.agent.LoadWeights(env.Network); err != nil {
		return fmt.Errorf("selfplay: resume: %w", err)
	}
	if err := l.agent.LoadOptimizerState(env.Optimizer); err != nil {
		return fmt.Errorf("selfplay: resume: %w", err)
	}
	l.buffer.LoadItems(env.Buffer)

	l.cycle = env.Cycle
	l.epsilon = env.Epsilon
	l.seeds = seedmgr.New(env.MasterSeed)

	return nil
}
