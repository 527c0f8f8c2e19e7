package logreg

import (
	"log/slog"
	"math"
)

// ConvergenceConfig defines parameters for detecting fit convergence
// from a loss history.
type ConvergenceConfig struct {
	// Enabled controls whether convergence detection is active
	Enabled bool

	// Patience is the number of loss updates with no significant
	// improvement before the fit is considered converged
	Patience int

	// Threshold is the minimum relative improvement required to count
	// as progress: (oldLoss - newLoss) / oldLoss
	Threshold float64
}

// DefaultConvergenceConfig returns sensible defaults for convergence detection
func DefaultConvergenceConfig() ConvergenceConfig {
	return ConvergenceConfig{
		Enabled:   true,
		Patience:  25,
		Threshold: 1e-4,
	}
}

// ConvergenceTracker tracks loss history and detects when a fit has
// stopped making progress.
type ConvergenceTracker struct {
	config          ConvergenceConfig
	bestLoss        float64
	lastSignificant float64
	staleCount      int
	updates         int
}

// NewConvergenceTracker creates a tracker with the given config
func NewConvergenceTracker(config ConvergenceConfig) *ConvergenceTracker {
	return &ConvergenceTracker{
		config:          config,
		bestLoss:        math.Inf(1),
		lastSignificant: math.Inf(1),
	}
}

// Update records a new loss value and returns true if convergence is detected
func (c *ConvergenceTracker) Update(loss float64) bool {
	if !c.config.Enabled {
		return false
	}

	c.updates++
	if loss < c.bestLoss {
		c.bestLoss = loss
	}

	if c.updates == 1 {
		c.lastSignificant = loss
		return false
	}

	relativeImprovement := (c.lastSignificant - loss) / c.lastSignificant
	if relativeImprovement >= c.config.Threshold {
		c.lastSignificant = loss
		c.staleCount = 0
		return false
	}

	c.staleCount++
	if c.staleCount >= c.config.Patience {
		slog.Debug("Convergence detected",
			"stale_count", c.staleCount,
			"patience", c.config.Patience,
			"best_loss", c.bestLoss,
		)
		return true
	}
	return false
}

// Scan feeds an entire loss history through the tracker and reports
// whether it converged at any point.
func (c *ConvergenceTracker) Scan(history []float64) bool {
	converged := false
	for _, loss := range history {
		if c.Update(loss) {
			converged = true
		}
	}
	return converged
}

// BestLoss returns the best loss seen so far
func (c *ConvergenceTracker) BestLoss() float64 {
	return c.bestLoss
}

// StaleCount returns the current number of updates without improvement
func (c *ConvergenceTracker) StaleCount() int {
	return c.staleCount
}
