package main

import (
	"testing"
	"time"

	"github.com/cwbudde/logisticfit/internal/store"
)

func TestResume_ImprovesOnWeakCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()

	checkpointStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// A checkpoint with zero weights and a deliberately poor loss: any
	// real fit beats it.
	weights := make([]float64, 9) // 3 classes x (2 features + bias)
	checkpoint := store.NewCheckpoint("job-weak", weights, 2, 3, 5.0, 1.0986, 10, testCheckpointConfig())
	if err := checkpointStore.SaveCheckpoint("job-weak", checkpoint); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	originalDataDir := resumeDataDir
	originalIters := resumeIters
	resumeDataDir = tmpDir
	resumeIters = 50
	defer func() {
		resumeDataDir = originalDataDir
		resumeIters = originalIters
	}()

	if err := runResume(nil, []string{"job-weak"}); err != nil {
		t.Fatalf("runResume failed: %v", err)
	}

	updated, err := checkpointStore.LoadCheckpoint("job-weak")
	if err != nil {
		t.Fatalf("Failed to reload checkpoint: %v", err)
	}

	if updated.BestLoss >= 5.0 {
		t.Errorf("Resume should have improved the loss, got %v", updated.BestLoss)
	}
	if updated.Iteration <= 10 {
		t.Errorf("Iteration count should have advanced past 10, got %d", updated.Iteration)
	}
	if err := updated.Validate(); err != nil {
		t.Errorf("Updated checkpoint invalid: %v", err)
	}
}

func TestResume_KeepsBetterCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()

	checkpointStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// A checkpoint claiming an unbeatable loss: its weights must survive.
	weights := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}
	checkpoint := store.NewCheckpoint("job-strong", weights, 2, 3, 1e-12, 1.0986, 500, testCheckpointConfig())
	if err := checkpointStore.SaveCheckpoint("job-strong", checkpoint); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	originalDataDir := resumeDataDir
	originalIters := resumeIters
	resumeDataDir = tmpDir
	resumeIters = 20
	defer func() {
		resumeDataDir = originalDataDir
		resumeIters = originalIters
	}()

	if err := runResume(nil, []string{"job-strong"}); err != nil {
		t.Fatalf("runResume failed: %v", err)
	}

	updated, err := checkpointStore.LoadCheckpoint("job-strong")
	if err != nil {
		t.Fatalf("Failed to reload checkpoint: %v", err)
	}

	if updated.BestLoss != 1e-12 {
		t.Errorf("Checkpoint loss should be untouched, got %v", updated.BestLoss)
	}
	for i, w := range weights {
		if updated.Weights[i] != w {
			t.Errorf("Weights[%d] changed: got %v, want %v", i, updated.Weights[i], w)
			break
		}
	}
}

func TestResume_MissingCheckpoint(t *testing.T) {
	originalDataDir := resumeDataDir
	resumeDataDir = t.TempDir()
	defer func() { resumeDataDir = originalDataDir }()

	if err := runResume(nil, []string{"nonexistent"}); err == nil {
		t.Fatal("Expected error for missing checkpoint")
	}
}

func TestResume_InvalidCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()

	checkpointStore, err := store.NewFSStore(tmpDir)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	// Weight length does not match the recorded layout.
	bad := store.NewCheckpoint("job-bad", []float64{1, 2}, 2, 3, 0.5, 1.0, 10, testCheckpointConfig())
	bad.Timestamp = time.Now()
	if err := checkpointStore.SaveCheckpoint("job-bad", bad); err != nil {
		t.Fatalf("Failed to save checkpoint: %v", err)
	}

	originalDataDir := resumeDataDir
	resumeDataDir = tmpDir
	defer func() { resumeDataDir = originalDataDir }()

	if err := runResume(nil, []string{"job-bad"}); err == nil {
		t.Fatal("Expected error for invalid checkpoint")
	}
}
