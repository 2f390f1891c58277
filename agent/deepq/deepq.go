// Package deepq implements the DQN learner:
// epsilon-greedy masked action selection, Double-DQN target
// computation, and a batched Huber-loss gradient step, with a hard- or
// soft-synced target network. Directly adapted from GoLearn's
// agent/nonlinear/discrete/deepq/DeepQ.go (behaviour/train/target
// network triple, "feed the next-state action values in as a plain
// tensor" graph-decoupling trick, RunAll/Reset VM cadence), replacing
// its MSE/unmasked-max target with masked Huber/Double-DQN and its
// gorgonia.Solver with this repo's own optim.Solver.
package deepq

import (
	"fmt"
	"math"
	"math/rand"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/AnthonyKot/chess-rl-sub009/encoding"
	"github.com/AnthonyKot/chess-rl-sub009/network"
	"github.com/AnthonyKot/chess-rl-sub009/optim"
	"github.com/AnthonyKot/chess-rl-sub009/replay"
)

// DeepQ is a Double-DQN learner over a fixed 4096-slot action space.
type DeepQ struct {
	cfg Config

	policy     *network.MLP // batch size 1, used for action selection
	trainNet   *network.MLP // batch size cfg.BatchSize, attached to the loss graph
	targetNet  *network.MLP // batch size cfg.BatchSize, plain forward only
	onlineNext *network.MLP // batch size cfg.BatchSize, plain forward only; mirrors policy's weights, used for Double-DQN argmax

	policyVM, trainVM, targetVM, onlineVM G.VM
	solver *optim.Solver

	selectedActions        *G.Node // (batch, outputs) one-hot of the action taken
	nextStateActionValues  *G.Node // (batch, outputs) target net's raw Q(s', ·)
	selectedNextActionMask *G.Node // (batch, outputs) one-hot of the bootstrap action
	rewards                *G.Node // (batch,)
	discounts              *G.Node // (batch,)
	loss                   *G.Node

	steps int
}

// New builds a DeepQ learner. rng seeds every network's initial
// weights (ordinarily the network-init sub-stream from seedmgr).
func New(cfg Config, rng *rand.Rand) (*DeepQ, error) {
	if cfg.BatchSize <= 0 {
		return nil, &Error{Op: "new", Err: fmt.Errorf("batch size must be positive, got %d", cfg.BatchSize)}
	}
	if cfg.TargetUpdateFrequency <= 0 {
		cfg.TargetUpdateFrequency = 1
	}
	if cfg.HuberDelta <= 0 {
		cfg.HuberDelta = 1.0
	}

	policy := network.New(cfg.Features, cfg.Hidden, cfg.Outputs, 1, rng)
	trainNet := policy.CloneWithBatch(cfg.BatchSize)
	targetNet := policy.CloneWithBatch(cfg.BatchSize)
	onlineNext := policy.CloneWithBatch(cfg.BatchSize)

	gTrain := trainNet.Graph()
	batch, outputs := cfg.BatchSize, cfg.Outputs

	nextStateActionValues := G.NewMatrix(gTrain, G.Float64, G.WithShape(batch, outputs), G.WithName("nextStateActionValues"))
	selectedNextActionMask := G.NewMatrix(gTrain, G.Float64, G.WithShape(batch, outputs), G.WithName("selectedNextActionMask"))
	selectedActions := G.NewMatrix(gTrain, G.Float64, G.WithShape(batch, outputs), G.WithName("selectedActions"))
	rewards := G.NewVector(gTrain, G.Float64, G.WithShape(batch), G.WithName("rewards"))
	discounts := G.NewVector(gTrain, G.Float64, G.WithShape(batch), G.WithName("discounts"))

	bootstrapped, err := G.HadamardProd(nextStateActionValues, selectedNextActionMask)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}
	bootstrapped, err = G.Sum(bootstrapped, 1)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}
	bootstrapped, err = G.HadamardProd(bootstrapped, discounts)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}
	target, err := G.Add(bootstrapped, rewards)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}

	selectedQ, err := network.SelectedQ(trainNet.Prediction(), selectedActions)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}

	loss, err := network.HuberLoss(selectedQ, target, cfg.HuberDelta)
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}

	if _, err := G.Grad(loss, trainNet.Learnables()...); err != nil {
		return nil, fmt.Errorf("deepq: new: computing gradient: %w", err)
	}

	solver, err := cfg.Optimizer.Create(trainNet.Learnables())
	if err != nil {
		return nil, fmt.Errorf("deepq: new: %w", err)
	}

	d := &DeepQ{
		cfg:                    cfg,
		policy:                 policy,
		trainNet:               trainNet,
		targetNet:              targetNet,
		onlineNext:             onlineNext,
		policyVM:               G.NewTapeMachine(policy.Graph()),
		trainVM:                G.NewTapeMachine(gTrain, G.BindDualValues(trainNet.Learnables()...)),
		targetVM:               G.NewTapeMachine(targetNet.Graph()),
		onlineVM:               G.NewTapeMachine(onlineNext.Graph()),
		solver:                 solver,
		selectedActions:        selectedActions,
		nextStateActionValues:  nextStateActionValues,
		selectedNextActionMask: selectedNextActionMask,
		rewards:                rewards,
		discounts:              discounts,
		loss:                   loss,
	}
	return d, nil
}

// SelectAction runs epsilon-greedy action selection over the legal
// actions in legal: with probability epsilon, a uniformly random legal
// action; otherwise the legal action of greatest Q-value under the
// current policy network. rng should be the exploration sub-stream.
func (d *DeepQ) SelectAction(state []float64, legal map[int]bool, epsilon float64, rng *rand.Rand) (int, error) {
	if len(legal) == 0 {
		return 0, &Error{Op: "selectaction", Err: errNoLegalActions}
	}
	if rng.Float64() < epsilon {
		return randomLegalAction(legal, rng), nil
	}

	if err := d.policy.SetInput([][]float64{state}); err != nil {
		return 0, &Error{Op: "selectaction", Err: err}
	}
	if err := d.policyVM.RunAll(); err != nil {
		d.policyVM.Reset()
		return 0, &Error{Op: "selectaction", Err: err}
	}
	rows, err := d.policy.PredictionRows()
	d.policyVM.Reset()
	if err != nil {
		return 0, &Error{Op: "selectaction", Err: err}
	}
	return argmaxLegal(rows[0], legal), nil
}

// Snapshot returns an independent copy of the current behaviour
// policy's weights on a fresh graph, suitable for handing to a
// self-play worker that runs its own VM concurrently with training:
// a cycle's snapshot is a deep copy taken before the game phase
// begins, so later training updates never leak into games already
// in flight.
func (d *DeepQ) Snapshot() *network.MLP {
	return d.policy.CloneWithBatch(1)
}

// SaveWeights gobs the behaviour policy's architecture and weights, for
// a checkpoint envelope.
func (d *DeepQ) SaveWeights() ([]byte, error) {
	return d.policy.Save()
}

// LoadWeights restores weights from a checkpoint produced by
// SaveWeights into every network this agent holds (policy, train and
// target nets), so training resumes from exactly the loaded state
// rather than from the train/target nets' last in-memory values.
func (d *DeepQ) LoadWeights(data []byte) error {
	for _, net := range []*network.MLP{d.policy, d.trainNet, d.targetNet, d.onlineNext} {
		if err := net.Load(data); err != nil {
			return fmt.Errorf("deepq: loadweights: %w", err)
		}
	}
	return nil
}

// OptimizerState returns the solver's current moment buffers and step
// count, for a checkpoint envelope.
func (d *DeepQ) OptimizerState() optim.State {
	return d.solver.State()
}

// LoadOptimizerState restores the solver's moment buffers and step
// count from a checkpoint produced by OptimizerState, so the next
// Update continues the same Adam/RMSProp trajectory instead of
// restarting with zeroed moment estimates.
func (d *DeepQ) LoadOptimizerState(st optim.State) error {
	if err := d.solver.Restore(st); err != nil {
		return fmt.Errorf("deepq: loadoptimizerstate: %w", err)
	}
	return nil
}

// SelectFrom runs epsilon-greedy masked action selection against an
// arbitrary batch-size-1 network and VM, the same policy SelectAction
// implements, for use by self-play workers holding their own frozen
// network snapshot rather than a live DeepQ agent.
func SelectFrom(net *network.MLP, vm G.VM, state []float64, legal map[int]bool, epsilon float64, rng *rand.Rand) (int, error) {
	if len(legal) == 0 {
		return 0, &Error{Op: "selectfrom", Err: errNoLegalActions}
	}
	if rng.Float64() < epsilon {
		return randomLegalAction(legal, rng), nil
	}
	if err := net.SetInput([][]float64{state}); err != nil {
		return 0, &Error{Op: "selectfrom", Err: err}
	}
	if err := vm.RunAll(); err != nil {
		vm.Reset()
		return 0, &Error{Op: "selectfrom", Err: err}
	}
	rows, err := net.PredictionRows()
	vm.Reset()
	if err != nil {
		return 0, &Error{Op: "selectfrom", Err: err}
	}
	return argmaxLegal(rows[0], legal), nil
}

func randomLegalAction(legal map[int]bool, rng *rand.Rand) int {
	idx := rng.Intn(len(legal))
	for a := range legal {
		rank := 0
		for other := range legal {
			if other < a {
				rank++
			}
		}
		if rank == idx {
			return a
		}
	}
	panic("deepq: unreachable")
}

func argmaxLegal(qValues []float64, legal map[int]bool) int {
	best := -1
	bestQ := math.Inf(-1)
	for a := range legal {
		if qValues[a] > bestQ || (qValues[a] == bestQ && a < best) {
			bestQ = qValues[a]
			best = a
		}
	}
	return best
}

// Update samples no data itself; it trains on exactly the given batch
// (ordinarily drawn from a replay.Buffer by the caller), runs one
// gradient step, and periodically syncs the target network. len(batch)
// must equal cfg.BatchSize.
func (d *DeepQ) Update(batch []replay.Experience) (Stats, error) {
	if len(batch) != d.cfg.BatchSize {
		return Stats{}, &Error{Op: "update", Err: errBatchSizeMismatch}
	}

	states := make([][]float64, len(batch))
	nextStates := make([][]float64, len(batch))
	for i, e := range batch {
		states[i] = e.State.RawVector().Data
		nextStates[i] = e.NextState.RawVector().Data
	}

	if err := d.targetNet.SetInput(nextStates); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if err := d.targetVM.RunAll(); err != nil {
		d.targetVM.Reset()
		return Stats{}, &Error{Op: "update", Err: err}
	}
	targetRows, err := d.targetNet.PredictionRows()
	d.targetVM.Reset()
	if err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}

	var onlineRows [][]float64
	if d.cfg.DoubleDQN {
		if err := network.Set(d.onlineNext, d.policy); err != nil {
			return Stats{}, &Error{Op: "update", Err: err}
		}
		if err := d.onlineNext.SetInput(nextStates); err != nil {
			return Stats{}, &Error{Op: "update", Err: err}
		}
		if err := d.onlineVM.RunAll(); err != nil {
			d.onlineVM.Reset()
			return Stats{}, &Error{Op: "update", Err: err}
		}
		onlineRows, err = d.onlineNext.PredictionRows()
		d.onlineVM.Reset()
		if err != nil {
			return Stats{}, &Error{Op: "update", Err: err}
		}
	}

	maskFlat := make([]float64, len(batch)*d.cfg.Outputs)
	rewardFlat := make([]float64, len(batch))
	discountFlat := make([]float64, len(batch))
	selectedFlat := make([]float64, len(batch)*d.cfg.Outputs)
	nonZeroRewards := 0

	for i, e := range batch {
		selectedFlat[i*d.cfg.Outputs+e.Action] = 1.0
		rewardFlat[i] = e.Reward
		if e.Reward != 0 {
			nonZeroRewards++
		}
		if e.Done || len(e.LegalNextActions) == 0 {
			discountFlat[i] = 0
			continue
		}
		discountFlat[i] = d.cfg.Gamma

		selector := targetRows[i]
		if d.cfg.DoubleDQN {
			selector = onlineRows[i]
		}
		a := argmaxLegal(selector, e.LegalNextActions)
		maskFlat[i*d.cfg.Outputs+a] = 1.0
	}

	if err := setTensor(d.nextStateActionValues, flattenRows(targetRows), len(batch), d.cfg.Outputs); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if err := setTensor(d.selectedNextActionMask, maskFlat, len(batch), d.cfg.Outputs); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if err := setTensor(d.selectedActions, selectedFlat, len(batch), d.cfg.Outputs); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if err := G.Let(d.rewards, tensor.New(tensor.WithShape(len(batch)), tensor.WithBacking(rewardFlat))); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if err := G.Let(d.discounts, tensor.New(tensor.WithShape(len(batch)), tensor.WithBacking(discountFlat))); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}

	if err := d.trainNet.SetInput(states); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}

	if err := d.trainVM.RunAll(); err != nil {
		d.trainVM.Reset()
		return Stats{}, &Error{Op: "update", Err: err}
	}
	lossVal, ok := d.loss.Value().Data().(float64)
	if !ok {
		d.trainVM.Reset()
		return Stats{}, &Error{Op: "update", Err: fmt.Errorf("unexpected loss value type %T", d.loss.Value())}
	}
	d.trainVM.Reset()

	if math.IsNaN(lossVal) || math.IsInf(lossVal, 0) {
		return Stats{}, &Error{Op: "update", Err: fmt.Errorf("non-finite loss %v: %w", lossVal, optim.ErrNumericalInstability)}
	}

	gradNorm, err := d.solver.Step()
	if err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	d.steps++

	if err := network.Set(d.policy, d.trainNet); err != nil {
		return Stats{}, &Error{Op: "update", Err: err}
	}
	if d.steps%d.cfg.TargetUpdateFrequency == 0 {
		if d.cfg.Tau >= 1.0 {
			err = network.Set(d.targetNet, d.trainNet)
		} else {
			err = network.Polyak(d.targetNet, d.trainNet, d.cfg.Tau)
		}
		if err != nil {
			return Stats{}, &Error{Op: "update", Err: err}
		}
	}

	meanTarget := mean(flattenTargetMeans(targetRows, maskFlat, discountFlat, rewardFlat, d.cfg.Outputs))

	return Stats{
		Loss:              lossVal,
		GradNorm:          gradNorm,
		MeanTarget:        meanTarget,
		NonZeroRewardFrac: float64(nonZeroRewards) / float64(len(batch)),
	}, nil
}

func setTensor(node *G.Node, flat []float64, rows, cols int) error {
	return G.Let(node, tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(flat)))
}

func flattenRows(rows [][]float64) []float64 {
	if len(rows) == 0 {
		return nil
	}
	out := make([]float64, 0, len(rows)*len(rows[0]))
	for _, r := range rows {
		out = append(out, r...)
	}
	return out
}

func flattenTargetMeans(targetRows [][]float64, mask, discount, reward []float64, outputs int) []float64 {
	out := make([]float64, len(targetRows))
	for i, row := range targetRows {
		bootstrap := 0.0
		for j, v := range row {
			bootstrap += v * mask[i*outputs+j]
		}
		out[i] = reward[i] + discount[i]*bootstrap
	}
	return out
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// ActionSpaceSize is re-exported for callers that only import deepq.
const ActionSpaceSize = encoding.ActionSpaceSize
