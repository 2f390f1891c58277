// Command chess-rl-sub009 runs the self-play training loop end to end:
// build a Loop from the default configuration, run cycles until
// MaxCycles, checkpoint on schedule, and evaluate the final agent
// against the fixed-depth minimax baseline (depth BaselineDepth). It
// takes no flags; every knob
// lives in selfplay.Default(), and a CLI/config file surface is left
// to an external collaborator.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/AnthonyKot/chess-rl-sub009/eval"
	"github.com/AnthonyKot/chess-rl-sub009/selfplay"
	"github.com/AnthonyKot/chess-rl-sub009/utils/progressbar"
)

func main() {
	cfg := selfplay.Default()

	loop, err := selfplay.New(cfg)
	if err != nil {
		log.Fatalf("chess-rl: %v", err)
	}

	bar := progressbar.NewManualProgressBar(40, cfg.MaxCycles)

	for cycle := 1; cycle <= cfg.MaxCycles; cycle++ {
		metrics, err := loop.RunCycle()
		if err != nil {
			log.Fatalf("chess-rl: cycle %d: %v", cycle, err)
		}
		bar.Increment()
		bar.Display()
		fmt.Printf("\ncycle=%d games=%d w/d/l=%d/%d/%d avg_plies=%.1f loss=%.4f grad_norm=%.4f buffer=%d eps=%.3f\n",
			metrics.Cycle, metrics.GamesPlayed, metrics.Wins, metrics.Draws, metrics.Losses,
			metrics.AveragePlies, metrics.MeanLoss, metrics.MeanGradNorm, metrics.BufferSize, metrics.Epsilon)

		if cfg.CheckpointInterval > 0 && cycle%cfg.CheckpointInterval == 0 {
			path, err := loop.Checkpoint(cfg.CheckpointDirectory)
			if err != nil {
				log.Fatalf("chess-rl: checkpoint at cycle %d: %v", cycle, err)
			}
			fmt.Println("checkpoint written:", path)
		}
	}

	evaluator := eval.New(loop.Agent(), eval.Minimax{Depth: cfg.BaselineDepth}, cfg.Reward, cfg.MaxStepsPerGame)
	result, err := evaluator.Run(cfg.EvaluationGames, rand.New(rand.NewSource(int64(os.Getpid()))))
	if err != nil {
		log.Fatalf("chess-rl: evaluation: %v", err)
	}
	fmt.Printf("evaluation: win_rate=%.3f draw_rate=%.3f loss_rate=%.3f avg_length=%.1f\n",
		result.WinRate, result.DrawRate, result.LossRate, result.AverageLength)
}
