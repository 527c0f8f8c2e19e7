package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/cwbudde/logisticfit/internal/dataset"
	"github.com/cwbudde/logisticfit/internal/logreg"
	"github.com/cwbudde/logisticfit/internal/opt"
	"github.com/cwbudde/logisticfit/internal/store"
	"github.com/spf13/cobra"
)

var (
	resumeDataDir string
	resumeIters   int
)

var resumeCmd = &cobra.Command{
	Use:   "resume [job-id]",
	Short: "Resume a fit from its checkpoint",
	Long: `Loads the checkpoint for the given job, reruns the solver on the same
dataset and configuration, and keeps whichever weights score the lower
loss. Solver internals are not persisted, so the resumed run restarts
the search rather than continuing it; the checkpointed loss is the
floor either way.`,
	Args: cobra.ExactArgs(1),
	RunE: runResume,
}

func init() {
	resumeCmd.Flags().StringVar(&resumeDataDir, "data-dir", "./data", "Base directory for checkpoint storage")
	resumeCmd.Flags().IntVar(&resumeIters, "iters", 0, "Override iteration budget (0 = use checkpoint config)")

	rootCmd.AddCommand(resumeCmd)
}

func runResume(cmd *cobra.Command, args []string) error {
	jobID := args[0]

	checkpointStore, err := store.NewFSStore(resumeDataDir)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint store: %w", err)
	}

	checkpoint, err := checkpointStore.LoadCheckpoint(jobID)
	if err != nil {
		return fmt.Errorf("failed to load checkpoint: %w", err)
	}
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("checkpoint is invalid: %w", err)
	}

	cfg := checkpoint.Config
	if resumeIters > 0 {
		cfg.Iters = resumeIters
	}
	if err := checkpoint.IsCompatible(cfg); err != nil {
		return fmt.Errorf("checkpoint cannot seed this run: %w", err)
	}

	slog.Info("Resuming fit",
		"job_id", jobID,
		"dataset", cfg.Dataset,
		"solver", cfg.Solver,
		"checkpoint_loss", checkpoint.BestLoss,
		"checkpoint_iteration", checkpoint.Iteration,
	)

	ds, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}
	if len(cfg.Features) > 0 {
		ds, err = ds.Select(cfg.Features...)
		if err != nil {
			return fmt.Errorf("failed to select features: %w", err)
		}
	}
	if cfg.Target != "" {
		ds, err = ds.Binary(cfg.Target)
		if err != nil {
			return fmt.Errorf("failed to binarize labels: %w", err)
		}
	}
	train, _ := ds.Split(cfg.TestRatio, cfg.Seed)

	solver, ok := opt.New(cfg.Solver, cfg.Iters, cfg.PopSize, cfg.Seed)
	if !ok {
		return fmt.Errorf("unknown solver: %s", cfg.Solver)
	}

	clf := logreg.NewClassifier(solver, cfg.C)

	start := time.Now()
	if err := clf.Fit(train.X, train.Y); err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}
	elapsed := time.Since(start)

	newLoss := clf.BestLoss()
	evals := len(clf.History())

	// Keep whichever weights are better
	bestWeights := clf.Weights()
	bestLoss := newLoss
	improved := newLoss < checkpoint.BestLoss
	if !improved {
		bestWeights = checkpoint.Weights
		bestLoss = checkpoint.BestLoss
		slog.Info("Resumed run did not improve on checkpoint", "new_loss", newLoss, "checkpoint_loss", checkpoint.BestLoss)
	}

	updated := store.NewCheckpoint(
		jobID,
		bestWeights,
		checkpoint.NumFeatures,
		checkpoint.NumClasses,
		bestLoss,
		checkpoint.InitialLoss,
		checkpoint.Iteration+evals,
		checkpoint.Config,
	)
	if err := checkpointStore.SaveCheckpoint(jobID, updated); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	fmt.Printf("Resumed %s in %s (%d evaluations)\n", jobID, elapsed.Round(time.Millisecond), evals)
	if improved {
		fmt.Printf("Loss improved: %.6f -> %.6f\n", checkpoint.BestLoss, bestLoss)
	} else {
		fmt.Printf("Kept checkpoint weights (loss %.6f, new run reached %.6f)\n", checkpoint.BestLoss, newLoss)
	}

	return nil
}
