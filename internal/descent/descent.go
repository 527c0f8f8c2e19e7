package descent

// GradFunc maps a scalar parameter to its derivative under some loss surface.
type GradFunc func(x float64) float64

// DefaultSteps is the step count used by the CLI when none is given.
const DefaultSteps = 10

// Trace simulates fixed-step gradient descent on a single parameter and
// returns the full path taken, starting value included.
//
// The returned slice has length steps+1 (steps <= 0 yields just [x0]).
// Element i is derived from element i-1 by x - rate*grad(x). No input
// validation is performed: non-finite values propagate through the
// trajectory exactly as IEEE-754 arithmetic dictates.
func Trace(x0, rate float64, grad GradFunc, steps int) []float64 {
	if steps < 0 {
		steps = 0
	}

	path := make([]float64, 0, steps+1)
	path = append(path, x0)

	x := x0
	for i := 0; i < steps; i++ {
		x -= rate * grad(x)
		path = append(path, x)
	}

	return path
}

// Linear returns the gradient g(x) = k*x, the derivative of the loss
// L(x) = k/2 * x^2. Under this gradient the iterates follow the closed
// form x0 * (1 - rate*k)^i.
func Linear(k float64) GradFunc {
	return func(x float64) float64 {
		return k * x
	}
}

// Quadratic returns the gradient of the bowl L(x) = a*x^2, i.e. 2*a*x.
func Quadratic(a float64) GradFunc {
	return Linear(2 * a)
}

// Bowl returns the loss L(x) = a*x^2 matching Quadratic(a), used when
// plotting a trajectory over its loss surface.
func Bowl(a float64) func(x float64) float64 {
	return func(x float64) float64 {
		return a * x * x
	}
}
