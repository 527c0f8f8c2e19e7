package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/cwbudde/logisticfit/internal/dataset"
	"github.com/cwbudde/logisticfit/internal/logreg"
	"github.com/cwbudde/logisticfit/internal/opt"
	"github.com/cwbudde/logisticfit/internal/render"
	"github.com/cwbudde/logisticfit/internal/store"
)

// runJob executes a classifier fit job in the background.
// If st is not nil and the job has checkpointInterval > 0, periodic
// checkpoints are saved while the solver runs.
func runJob(ctx context.Context, jm *JobManager, st *store.FSStore, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	err := jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateRunning
	})
	if err != nil {
		return err
	}

	cfg := job.Config
	slog.Info("Starting job", "job_id", jobID, "dataset", cfg.Dataset, "solver", cfg.Solver)

	// Load and slice the dataset
	ds, err := dataset.Load(cfg.Dataset)
	if err != nil {
		markJobFailed(jm, jobID, fmt.Errorf("failed to load dataset: %w", err))
		return err
	}
	if len(cfg.Features) > 0 {
		ds, err = ds.Select(cfg.Features...)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to select features: %w", err))
			return err
		}
	}
	if cfg.Target != "" {
		ds, err = ds.Binary(cfg.Target)
		if err != nil {
			markJobFailed(jm, jobID, fmt.Errorf("failed to binarize labels: %w", err))
			return err
		}
	}

	train, test := ds.Split(cfg.TestRatio, cfg.Seed)
	slog.Info("Dataset ready", "job_id", jobID, "train_rows", train.NumRows(), "features", len(train.FeatureNames))

	solver, ok := opt.New(cfg.Solver, cfg.Iters, cfg.PopSize, cfg.Seed)
	if !ok {
		err := fmt.Errorf("unknown solver: %s", cfg.Solver)
		markJobFailed(jm, jobID, err)
		return err
	}

	// Stream the loss history to disk alongside the checkpoint
	var tw *store.TraceWriter
	if st != nil {
		tw, err = store.NewTraceWriter(st.BaseDir(), jobID, false)
		if err != nil {
			slog.Warn("Failed to create trace writer", "job_id", jobID, "error", err)
			tw = nil
		} else {
			defer tw.Close()
		}
	}

	clf := logreg.NewClassifier(solver, cfg.C)
	clf.OnEval = func(evals int, loss float64) {
		jm.UpdateJob(jobID, func(j *Job) {
			j.Iterations = evals
			if evals == 1 || loss < j.BestLoss {
				j.BestLoss = loss
			}
		})
		if tw != nil {
			tw.Write(store.TraceEntry{Iteration: evals, Loss: loss, Timestamp: time.Now()})
		}
	}

	start := time.Now()

	// Check for cancellation before starting expensive operation
	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	progressDone := make(chan struct{})
	go monitorProgress(ctx, jm, jobID, start, progressDone)

	checkpointDone := make(chan struct{})
	if st != nil && cfg.CheckpointInterval > 0 {
		go monitorCheckpoints(ctx, jm, st, clf, jobID, checkpointDone)
	} else {
		close(checkpointDone)
	}

	fitErr := clf.Fit(train.X, train.Y)

	close(progressDone)
	if st != nil && cfg.CheckpointInterval > 0 {
		close(checkpointDone)
	}
	elapsed := time.Since(start)

	if fitErr != nil {
		markJobFailed(jm, jobID, fitErr)
		return fitErr
	}

	select {
	case <-ctx.Done():
		markJobCancelled(jm, jobID)
		return ctx.Err()
	default:
	}

	// Score on training and held-out rows
	trainPred, err := clf.Predict(train.X)
	if err != nil {
		markJobFailed(jm, jobID, err)
		return err
	}
	trainAcc := logreg.Accuracy(trainPred, train.Y)

	testAcc := float64(0)
	if test != nil {
		testPred, err := clf.Predict(test.X)
		if err != nil {
			markJobFailed(jm, jobID, err)
			return err
		}
		testAcc = logreg.Accuracy(testPred, test.Y)
	}

	endTime := time.Now()
	err = jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCompleted
		j.Weights = clf.Weights()
		j.NumFeatures = clf.NumFeatures()
		j.NumClasses = clf.NumClasses()
		j.BestLoss = clf.BestLoss()
		j.InitialLoss = clf.InitialLoss()
		j.TrainAccuracy = trainAcc
		j.TestAccuracy = testAcc
		j.EndTime = &endTime
	})
	if err != nil {
		return err
	}

	if st != nil {
		if err := saveCheckpoint(jm, st, clf, jobID); err != nil {
			slog.Warn("Failed to save final checkpoint", "job_id", jobID, "error", err)
		}
		if err := renderArtifacts(st, clf, train, jobID); err != nil {
			slog.Warn("Failed to render artifacts", "job_id", jobID, "error", err)
		}
		if tw != nil {
			tw.Flush()
		}
	}

	job, _ = jm.GetJob(jobID)
	slog.Info("Job completed",
		"job_id", jobID,
		"elapsed", elapsed,
		"initial_loss", clf.InitialLoss(),
		"best_loss", clf.BestLoss(),
		"train_accuracy", trainAcc,
		"test_accuracy", testAcc,
	)

	eps := float64(0)
	if elapsed.Seconds() > 0 {
		eps = float64(job.Iterations) / elapsed.Seconds()
	}
	jm.broadcaster.Broadcast(ProgressEvent{
		JobID:       jobID,
		State:       StateCompleted,
		Iterations:  job.Iterations,
		BestLoss:    clf.BestLoss(),
		EvalsPerSec: eps,
		Timestamp:   time.Now(),
	})

	return nil
}

// monitorProgress periodically broadcasts progress events while the fit runs
func monitorProgress(ctx context.Context, jm *JobManager, jobID string, startTime time.Time, done chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond) // Throttle to 2 updates per second
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, exists := jm.GetJob(jobID)
			if !exists {
				return
			}

			elapsed := time.Since(startTime).Seconds()
			var eps float64
			if elapsed > 0 {
				eps = float64(job.Iterations) / elapsed
			}

			jm.broadcaster.Broadcast(ProgressEvent{
				JobID:       jobID,
				State:       job.State,
				Iterations:  job.Iterations,
				BestLoss:    job.BestLoss,
				EvalsPerSec: eps,
				Timestamp:   time.Now(),
			})
		}
	}
}

// markJobFailed marks a job as failed with an error message
func markJobFailed(jm *JobManager, jobID string, err error) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateFailed
		j.Error = err.Error()
		j.EndTime = &endTime
	})
	slog.Error("Job failed", "job_id", jobID, "error", err)
}

// markJobCancelled marks a job as cancelled
func markJobCancelled(jm *JobManager, jobID string) {
	endTime := time.Now()
	jm.UpdateJob(jobID, func(j *Job) {
		j.State = StateCancelled
		j.EndTime = &endTime
	})
	slog.Info("Job cancelled", "job_id", jobID)
}

// monitorCheckpoints periodically saves checkpoints while the fit runs
func monitorCheckpoints(ctx context.Context, jm *JobManager, st *store.FSStore, clf *logreg.Classifier, jobID string, done chan struct{}) {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return
	}

	interval := time.Duration(job.Config.CheckpointInterval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := saveCheckpoint(jm, st, clf, jobID); err != nil {
				slog.Error("Failed to save checkpoint", "job_id", jobID, "error", err)
			}
		}
	}
}

// saveCheckpoint persists the best weights observed so far for the job
func saveCheckpoint(jm *JobManager, st *store.FSStore, clf *logreg.Classifier, jobID string) error {
	job, exists := jm.GetJob(jobID)
	if !exists {
		return fmt.Errorf("job not found: %s", jobID)
	}

	weights, loss, ok := clf.Snapshot()
	if !ok {
		slog.Debug("Skipping checkpoint, no weights yet", "job_id", jobID)
		return nil
	}

	// Snapshot weights exist before Fit fills in the layout fields, so
	// derive the layout from the weight length and feature count.
	numFeatures := len(job.Config.Features)
	if numFeatures == 0 || len(weights)%(numFeatures+1) != 0 {
		return fmt.Errorf("cannot derive weight layout for job %s", jobID)
	}
	blocks := len(weights) / (numFeatures + 1)
	numClasses := blocks
	if blocks == 1 {
		numClasses = 2
	}

	checkpoint := store.NewCheckpoint(
		jobID,
		weights,
		numFeatures,
		numClasses,
		loss,
		job.InitialLoss,
		job.Iterations,
		job.Config,
	)

	if err := st.SaveCheckpoint(jobID, checkpoint); err != nil {
		return fmt.Errorf("failed to save checkpoint: %w", err)
	}

	slog.Info("Checkpoint saved",
		"job_id", jobID,
		"iteration", job.Iterations,
		"best_loss", loss,
	)
	return nil
}

// renderArtifacts writes loss.png and, for two-feature jobs,
// boundary.png into the job directory served by the artifact endpoints
func renderArtifacts(st *store.FSStore, clf *logreg.Classifier, train *dataset.Dataset, jobID string) error {
	jobDir := st.JobDir(jobID)
	if err := os.MkdirAll(jobDir, 0755); err != nil {
		return fmt.Errorf("failed to create job directory: %w", err)
	}

	lossPath := filepath.Join(jobDir, "loss.png")
	if err := render.LossCurve(clf.History(), lossPath); err != nil {
		return fmt.Errorf("failed to render loss curve: %w", err)
	}

	if len(train.FeatureNames) == 2 {
		boundaryPath := filepath.Join(jobDir, "boundary.png")
		if err := render.DecisionBoundary(clf, train, boundaryPath); err != nil {
			return fmt.Errorf("failed to render decision boundary: %w", err)
		}
	}

	slog.Debug("Artifacts rendered", "job_id", jobID, "dir", jobDir)
	return nil
}
