package logreg

import (
	"math"
	"testing"
)

func TestSigmoid(t *testing.T) {
	if got := Sigmoid(0); got != 0.5 {
		t.Errorf("Sigmoid(0) = %f, want 0.5", got)
	}

	if got := Sigmoid(100); got <= 0.999 {
		t.Errorf("Sigmoid(100) = %f, want ~1", got)
	}
	if got := Sigmoid(-100); got >= 0.001 {
		t.Errorf("Sigmoid(-100) = %f, want ~0", got)
	}

	// Strictly increasing
	prev := Sigmoid(-5)
	for z := -4.0; z <= 5; z++ {
		cur := Sigmoid(z)
		if cur <= prev {
			t.Fatalf("Sigmoid not increasing at z=%f", z)
		}
		prev = cur
	}
}

func TestLogitInvertsSigmoid(t *testing.T) {
	for _, z := range []float64{-3, -0.7, 0, 0.7, 3} {
		if got := Logit(Sigmoid(z)); math.Abs(got-z) > 1e-9 {
			t.Errorf("Logit(Sigmoid(%f)) = %f", z, got)
		}
	}
}

func TestSoftmax_SumsToOne(t *testing.T) {
	z := []float64{1.0, 2.0, 3.0}
	p := make([]float64, 3)
	Softmax(p, z)

	var sum float64
	for _, v := range p {
		if v <= 0 || v >= 1 {
			t.Errorf("Probability out of (0,1): %f", v)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Probabilities sum to %f, want 1", sum)
	}

	// Larger logit, larger probability
	if !(p[2] > p[1] && p[1] > p[0]) {
		t.Errorf("Softmax not order preserving: %v", p)
	}
}

func TestSoftmax_LargeLogits(t *testing.T) {
	// Without the max shift exp(1000) would overflow.
	z := []float64{1000, 1001, 999}
	p := make([]float64, 3)
	Softmax(p, z)

	var sum float64
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Non-finite probability: %v", p)
		}
		sum += v
	}
	if math.Abs(sum-1) > 1e-12 {
		t.Errorf("Probabilities sum to %f, want 1", sum)
	}
}

func TestSoftmax_TwoClassesMatchesSigmoid(t *testing.T) {
	// Softmax over [0, z] equals [1-sigmoid(z), sigmoid(z)].
	for _, z := range []float64{-2, 0, 1.5} {
		p := make([]float64, 2)
		Softmax(p, []float64{0, z})
		if math.Abs(p[1]-Sigmoid(z)) > 1e-12 {
			t.Errorf("z=%f: softmax %f vs sigmoid %f", z, p[1], Sigmoid(z))
		}
	}
}

func TestLogSumExp(t *testing.T) {
	z := []float64{0.5, -1.2, 2.0}
	var direct float64
	for _, v := range z {
		direct += math.Exp(v)
	}
	if got := logSumExp(z); math.Abs(got-math.Log(direct)) > 1e-12 {
		t.Errorf("logSumExp = %f, want %f", got, math.Log(direct))
	}
}
