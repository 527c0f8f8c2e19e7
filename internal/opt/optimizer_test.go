package opt

import (
	"math"
	"testing"
)

// Sphere function: f(x) = sum(x_i^2), minimum at origin
func sphere(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return sum
}

func sphereGrad(dst, x []float64) {
	for i, v := range x {
		dst[i] = 2 * v
	}
}

func bounds(dim int, lo, hi float64) ([]float64, []float64) {
	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = lo
		upper[i] = hi
	}
	return lower, upper
}

func TestNew(t *testing.T) {
	for _, name := range []string{"bfgs", "mayfly"} {
		if _, ok := New(name, 10, 20, 1); !ok {
			t.Errorf("Expected %q to be a known backend", name)
		}
	}
	if _, ok := New("adam", 10, 20, 1); ok {
		t.Error("Unknown backend should not resolve")
	}
}

func TestBFGSAdapterOnSphere(t *testing.T) {
	optimizer := NewBFGS(100)

	dim := 3
	lower, upper := bounds(dim, -10, 10)

	best, cost, err := optimizer.Run(sphere, sphereGrad, lower, upper, dim)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}

	if cost > 1e-8 {
		t.Errorf("Expected cost near 0, got %g", cost)
	}

	for i, v := range best {
		if math.Abs(v) > 1e-4 {
			t.Errorf("Parameter %d = %f, expected near 0", i, v)
		}
	}
}

func TestBFGSAdapterNilGradient(t *testing.T) {
	// Without an analytic gradient the adapter falls back to finite
	// differences inside gonum.
	optimizer := NewBFGS(100)

	dim := 2
	lower, upper := bounds(dim, -5, 5)

	_, cost, err := optimizer.Run(sphere, nil, lower, upper, dim)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cost > 1e-6 {
		t.Errorf("Expected cost near 0, got %g", cost)
	}
}

func TestMayflyAdapterOnSphere(t *testing.T) {
	optimizer := NewMayfly(100, 20, 42) // maxIters, popSize, seed

	dim := 3
	lower, upper := bounds(dim, -10, 10)

	best, cost, err := optimizer.Run(sphere, nil, lower, upper, dim)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(best) != dim {
		t.Fatalf("Expected %d parameters, got %d", dim, len(best))
	}

	// Should converge close to zero
	if cost > 0.1 {
		t.Errorf("Expected cost near 0, got %f", cost)
	}
}

func TestMayflyAdapterDeterministic(t *testing.T) {
	dim := 2
	lower := []float64{-5, -5}
	upper := []float64{5, 5}

	// Run twice with same seed (popSize must be >=20 for mayfly v0.1.0)
	optimizer1 := NewMayfly(50, 20, 123)
	_, cost1, err := optimizer1.Run(sphere, nil, lower, upper, dim)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	optimizer2 := NewMayfly(50, 20, 123)
	_, cost2, err := optimizer2.Run(sphere, nil, lower, upper, dim)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if cost1 != cost2 {
		t.Errorf("Non-deterministic: cost1=%f, cost2=%f", cost1, cost2)
	}
}
