package store

import (
	"fmt"
	"time"
)

// FitConfig holds the configuration of a fit job (checkpoint copy).
// This avoids import cycles with the server package.
type FitConfig struct {
	Dataset            string   `json:"dataset"`
	Features           []string `json:"features"`
	Target             string   `json:"target,omitempty"` // one-vs-rest class; empty = multiclass softmax
	Solver             string   `json:"solver"`           // bfgs, mayfly
	C                  float64  `json:"c"`                // regularization strength
	Iters              int      `json:"iters"`
	PopSize            int      `json:"popSize"`
	Seed               int64    `json:"seed"`
	TestRatio          float64  `json:"testRatio"`
	CheckpointInterval int      `json:"checkpointInterval,omitempty"` // seconds, 0 = disabled
}

// Checkpoint represents a saved fit state. Only the best weight vector
// is persisted, not the solver's internal state (BFGS Hessian
// approximation, mayfly population): resuming restarts the solver and
// keeps whichever weights score better, so a resumed run can diverge
// from an uninterrupted one but never regresses past the saved loss.
type Checkpoint struct {
	// JobID is the unique identifier for this fit job
	JobID string `json:"jobId"`

	// Weights is the flat coefficient vector in the classifier's block
	// layout (one d+1 block per weight vector, bias last)
	Weights []float64 `json:"weights"`

	// NumFeatures and NumClasses fix the weight layout for restoring
	NumFeatures int `json:"numFeatures"`
	NumClasses  int `json:"numClasses"`

	// BestLoss is the regularized cross-entropy achieved by Weights
	BestLoss float64 `json:"bestLoss"`

	// InitialLoss is the loss at the zero weight vector
	InitialLoss float64 `json:"initialLoss"`

	// Iteration is the objective evaluation count at checkpoint time
	Iteration int `json:"iteration"`

	// Timestamp records when this checkpoint was created
	Timestamp time.Time `json:"timestamp"`

	// Config holds the job configuration, needed for validation during resume
	Config FitConfig `json:"config"`
}

// CheckpointInfo contains checkpoint metadata without the weight data.
type CheckpointInfo struct {
	JobID     string    `json:"jobId"`
	BestLoss  float64   `json:"bestLoss"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Dataset   string    `json:"dataset"`
	Solver    string    `json:"solver"`
	Features  []string  `json:"features"`
}

// NewCheckpoint creates a checkpoint from job state.
func NewCheckpoint(jobID string, weights []float64, numFeatures, numClasses int, bestLoss, initialLoss float64, iteration int, config FitConfig) *Checkpoint {
	return &Checkpoint{
		JobID:       jobID,
		Weights:     weights,
		NumFeatures: numFeatures,
		NumClasses:  numClasses,
		BestLoss:    bestLoss,
		InitialLoss: initialLoss,
		Iteration:   iteration,
		Timestamp:   time.Now(),
		Config:      config,
	}
}

// ToInfo converts a full Checkpoint to metadata only.
func (c *Checkpoint) ToInfo() CheckpointInfo {
	return CheckpointInfo{
		JobID:     c.JobID,
		BestLoss:  c.BestLoss,
		Iteration: c.Iteration,
		Timestamp: c.Timestamp,
		Dataset:   c.Config.Dataset,
		Solver:    c.Config.Solver,
		Features:  c.Config.Features,
	}
}

// Validate checks if the checkpoint has valid data.
func (c *Checkpoint) Validate() error {
	if c.JobID == "" {
		return &ValidationError{Field: "JobID", Reason: "cannot be empty"}
	}
	if len(c.Weights) == 0 {
		return &ValidationError{Field: "Weights", Reason: "cannot be empty"}
	}
	if c.NumFeatures <= 0 {
		return &ValidationError{Field: "NumFeatures", Reason: "must be positive"}
	}
	if c.NumClasses < 2 {
		return &ValidationError{Field: "NumClasses", Reason: "must be at least 2"}
	}
	blocks := c.NumClasses
	if c.NumClasses == 2 {
		blocks = 1
	}
	if want := blocks * (c.NumFeatures + 1); len(c.Weights) != want {
		return &ValidationError{
			Field:  "Weights",
			Reason: fmt.Sprintf("length mismatch: got %d, want %d for %d features / %d classes", len(c.Weights), want, c.NumFeatures, c.NumClasses),
		}
	}
	if c.Iteration < 0 {
		return &ValidationError{Field: "Iteration", Reason: "cannot be negative"}
	}
	if c.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	if c.Config.Dataset == "" {
		return &ValidationError{Field: "Config.Dataset", Reason: "cannot be empty"}
	}
	if c.Config.Solver == "" {
		return &ValidationError{Field: "Config.Solver", Reason: "cannot be empty"}
	}
	if c.Config.C <= 0 {
		return &ValidationError{Field: "Config.C", Reason: "must be positive"}
	}
	if c.Config.Iters <= 0 {
		return &ValidationError{Field: "Config.Iters", Reason: "must be positive"}
	}
	return nil
}

// ValidationError represents a checkpoint validation error.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation error: " + e.Field + " " + e.Reason
}

// IsCompatible checks if this checkpoint can seed a run with the given
// config. Dataset, feature selection, target and solver must match.
func (c *Checkpoint) IsCompatible(config FitConfig) error {
	if c.Config.Dataset != config.Dataset {
		return &CompatibilityError{Field: "Dataset", Expected: c.Config.Dataset, Actual: config.Dataset}
	}
	if len(c.Config.Features) != len(config.Features) {
		return &CompatibilityError{
			Field:    "Features",
			Expected: fmt.Sprintf("%v", c.Config.Features),
			Actual:   fmt.Sprintf("%v", config.Features),
		}
	}
	for i := range config.Features {
		if c.Config.Features[i] != config.Features[i] {
			return &CompatibilityError{
				Field:    "Features",
				Expected: fmt.Sprintf("%v", c.Config.Features),
				Actual:   fmt.Sprintf("%v", config.Features),
			}
		}
	}
	if c.Config.Target != config.Target {
		return &CompatibilityError{Field: "Target", Expected: c.Config.Target, Actual: config.Target}
	}
	if c.Config.Solver != config.Solver {
		return &CompatibilityError{Field: "Solver", Expected: c.Config.Solver, Actual: config.Solver}
	}
	return nil
}

// CompatibilityError represents a checkpoint compatibility error.
type CompatibilityError struct {
	Field    string
	Expected string
	Actual   string
}

func (e *CompatibilityError) Error() string {
	return "compatibility error: " + e.Field + " mismatch (expected " + e.Expected + ", got " + e.Actual + ")"
}
