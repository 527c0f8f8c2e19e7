package opt

import (
	"fmt"

	"gonum.org/v1/gonum/optimize"
)

// BFGSAdapter wraps gonum's quasi-Newton solver to conform to our
// Optimizer interface. This is the solver the classifier delegates
// coefficient estimation to.
type BFGSAdapter struct {
	maxIters int
}

// NewBFGS creates a new BFGS optimizer adapter
func NewBFGS(maxIters int) Optimizer {
	return &BFGSAdapter{maxIters: maxIters}
}

// Run executes the minimization starting from the zero vector.
// Bounds are ignored: BFGS is an unbounded line-search method, and the
// regularization term in the objective keeps iterates finite.
func (b *BFGSAdapter) Run(eval func([]float64) float64, grad func(dst, x []float64), lower, upper []float64, dim int) ([]float64, float64, error) {
	problem := optimize.Problem{
		Func: eval,
	}
	if grad != nil {
		problem.Grad = grad
	}

	settings := &optimize.Settings{
		MajorIterations: b.maxIters,
	}

	x0 := make([]float64, dim)
	result, err := optimize.Minimize(problem, x0, settings, &optimize.BFGS{})
	if result == nil {
		return nil, 0, fmt.Errorf("bfgs minimization failed: %w", err)
	}

	// Hitting the iteration budget is fine for our purposes: the best
	// point found so far is still a usable fit.
	if err != nil && result.Status != optimize.IterationLimit {
		return nil, 0, fmt.Errorf("bfgs minimization failed: %w", err)
	}

	return result.X, result.F, nil
}
