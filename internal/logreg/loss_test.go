package logreg

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func binaryFixture() (*mat.Dense, []int) {
	x := mat.NewDense(6, 2, []float64{
		-2.0, -1.5,
		-1.2, -0.8,
		-0.5, -1.1,
		0.6, 1.2,
		1.4, 0.9,
		2.1, 1.8,
	})
	y := []int{0, 0, 0, 1, 1, 1}
	return x, y
}

func threeClassFixture() (*mat.Dense, []int) {
	x := mat.NewDense(9, 2, []float64{
		-3.0, -3.1,
		-2.8, -2.5,
		-3.2, -2.9,
		0.1, 3.0,
		-0.2, 2.8,
		0.3, 3.2,
		3.1, -0.1,
		2.9, 0.2,
		3.3, -0.3,
	})
	y := []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	return x, y
}

func TestObjective_ZeroWeightsBinary(t *testing.T) {
	x, y := binaryFixture()
	obj := newObjective(x, y, 2, 1.0)

	// At w=0 every probability is 0.5, so the mean NLL is ln 2 and the
	// penalty is zero.
	got := obj.value(make([]float64, obj.dim()))
	if math.Abs(got-math.Ln2) > 1e-12 {
		t.Errorf("Loss at zero weights = %f, want ln2 = %f", got, math.Ln2)
	}
}

func TestObjective_ZeroWeightsMultinomial(t *testing.T) {
	x, y := threeClassFixture()
	obj := newObjective(x, y, 3, 1.0)

	got := obj.value(make([]float64, obj.dim()))
	want := math.Log(3)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("Loss at zero weights = %f, want ln3 = %f", got, want)
	}
}

func TestObjective_GradientMatchesFiniteDifference(t *testing.T) {
	cases := []struct {
		name string
		x    *mat.Dense
		y    []int
		k    int
	}{
		{"binary", nil, nil, 2},
		{"multinomial", nil, nil, 3},
	}
	cases[0].x, cases[0].y = binaryFixture()
	cases[1].x, cases[1].y = threeClassFixture()

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obj := newObjective(tc.x, tc.y, tc.k, 0.5)
			dim := obj.dim()

			w := make([]float64, dim)
			for i := range w {
				w[i] = 0.3*float64(i%5) - 0.6
			}

			analytic := make([]float64, dim)
			obj.gradient(analytic, w)

			h := 1e-6
			for i := 0; i < dim; i++ {
				wp := append([]float64{}, w...)
				wm := append([]float64{}, w...)
				wp[i] += h
				wm[i] -= h
				numeric := (obj.value(wp) - obj.value(wm)) / (2 * h)
				if math.Abs(analytic[i]-numeric) > 1e-4 {
					t.Errorf("Gradient component %d: analytic %f, numeric %f", i, analytic[i], numeric)
				}
			}
		})
	}
}

func TestObjective_PenaltyScalesWithC(t *testing.T) {
	x, y := binaryFixture()
	w := make([]float64, 3)
	w[0], w[1] = 1.0, -2.0 // bias (w[2]) stays zero

	weak := newObjective(x, y, 2, 100).value(w)
	strong := newObjective(x, y, 2, 0.01).value(w)

	if strong <= weak {
		t.Errorf("Stronger regularization should raise the loss: C=0.01 gives %f, C=100 gives %f", strong, weak)
	}
}

func TestObjective_BiasNotPenalized(t *testing.T) {
	x, y := binaryFixture()
	obj := newObjective(x, y, 2, 1.0)

	onlyBias := make([]float64, obj.dim())
	onlyBias[2] = 3.0

	if p := obj.penalty(onlyBias); p != 0 {
		t.Errorf("Bias-only weights should carry no penalty, got %f", p)
	}
}
