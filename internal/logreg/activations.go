package logreg

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Sigmoid is the logistic function mapping any real number to (0, 1).
func Sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// Logit is the inverse of Sigmoid: the log-odds of a probability.
// Values at exactly 0 or 1 yield -Inf/+Inf per floating-point semantics.
func Logit(p float64) float64 {
	return math.Log(p / (1 - p))
}

// Softmax writes the normalized exponentials of z into dst, which must
// have the same length. The output sums to 1. Inputs are max-shifted
// first so large logits do not overflow.
func Softmax(dst, z []float64) {
	shift := floats.Max(z)
	for i, v := range z {
		dst[i] = math.Exp(v - shift)
	}
	floats.Scale(1/floats.Sum(dst), dst)
}

// logSumExp computes log(sum(exp(z))) with the same max-shift trick.
func logSumExp(z []float64) float64 {
	shift := floats.Max(z)
	var sum float64
	for _, v := range z {
		sum += math.Exp(v - shift)
	}
	return shift + math.Log(sum)
}
