package opt

// Optimizer defines an optimization algorithm interface
type Optimizer interface {
	// Run minimizes the objective function
	// eval: objective function to minimize
	// grad: analytic gradient writing into dst; may be nil, in which case
	//   gradient-based backends fall back to finite differences
	// lower, upper: parameter bounds (ignored by unbounded backends)
	// dim: dimensionality of parameter space
	// Returns: best parameters and best cost
	Run(eval func([]float64) float64, grad func(dst, x []float64), lower, upper []float64, dim int) ([]float64, float64, error)
}

// New constructs an optimizer backend by name. Known names are "bfgs"
// and "mayfly". maxIters, popSize and seed configure the mayfly backend;
// bfgs only honors maxIters.
func New(name string, maxIters, popSize int, seed int64) (Optimizer, bool) {
	switch name {
	case "bfgs":
		return NewBFGS(maxIters), true
	case "mayfly":
		return NewMayfly(maxIters, popSize, seed), true
	}
	return nil, false
}
