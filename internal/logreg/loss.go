package logreg

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// objective is the regularized cross-entropy minimized during Fit.
//
// Weight layout: one block of d+1 values per weight vector, the bias
// last. Binary models use a single block (sigmoid over one logit);
// multinomial models use one block per class (softmax over k logits).
//
// The loss is the mean negative log-likelihood plus an L2 penalty of
// ||w||^2 / (2*C*n) over the non-bias weights. Larger C means a weaker
// penalty, matching the usual regularization-strength convention.
type objective struct {
	x *mat.Dense // n x d feature matrix
	y []int      // labels in [0, k)
	k int        // number of classes
	c float64    // regularization strength
}

func newObjective(x *mat.Dense, y []int, numClasses int, c float64) *objective {
	return &objective{x: x, y: y, k: numClasses, c: c}
}

// blocks is the number of weight vectors: sigmoid needs one, softmax
// needs one per class.
func (o *objective) blocks() int {
	if o.k == 2 {
		return 1
	}
	return o.k
}

func (o *objective) dim() int {
	_, d := o.x.Dims()
	return o.blocks() * (d + 1)
}

// logit computes w_b . x_i + bias_b for weight block b.
func (o *objective) logit(w []float64, b, i int) float64 {
	_, d := o.x.Dims()
	off := b * (d + 1)
	z := w[off+d] // bias
	for j := 0; j < d; j++ {
		z += w[off+j] * o.x.At(i, j)
	}
	return z
}

// penalty is the L2 term over non-bias weights, and penaltyGrad its
// contribution to the gradient.
func (o *objective) penalty(w []float64) float64 {
	n, d := o.x.Dims()
	var sum float64
	for b := 0; b < o.blocks(); b++ {
		off := b * (d + 1)
		for j := 0; j < d; j++ {
			sum += w[off+j] * w[off+j]
		}
	}
	return sum / (2 * o.c * float64(n))
}

func (o *objective) value(w []float64) float64 {
	n, _ := o.x.Dims()

	var nll float64
	if o.k == 2 {
		for i := 0; i < n; i++ {
			z := o.logit(w, 0, i)
			// Stable binary cross-entropy:
			// max(z,0) - z*y + log(1 + exp(-|z|))
			nll += math.Max(z, 0) - z*float64(o.y[i]) + math.Log1p(math.Exp(-math.Abs(z)))
		}
	} else {
		z := make([]float64, o.k)
		for i := 0; i < n; i++ {
			for b := 0; b < o.k; b++ {
				z[b] = o.logit(w, b, i)
			}
			nll += logSumExp(z) - z[o.y[i]]
		}
	}

	return nll/float64(n) + o.penalty(w)
}

func (o *objective) gradient(dst, w []float64) {
	n, d := o.x.Dims()
	for i := range dst {
		dst[i] = 0
	}

	if o.k == 2 {
		for i := 0; i < n; i++ {
			e := Sigmoid(o.logit(w, 0, i)) - float64(o.y[i])
			for j := 0; j < d; j++ {
				dst[j] += e * o.x.At(i, j)
			}
			dst[d] += e
		}
	} else {
		z := make([]float64, o.k)
		p := make([]float64, o.k)
		for i := 0; i < n; i++ {
			for b := 0; b < o.k; b++ {
				z[b] = o.logit(w, b, i)
			}
			Softmax(p, z)
			for b := 0; b < o.k; b++ {
				e := p[b]
				if b == o.y[i] {
					e -= 1
				}
				off := b * (d + 1)
				for j := 0; j < d; j++ {
					dst[off+j] += e * o.x.At(i, j)
				}
				dst[off+d] += e
			}
		}
	}

	nf := float64(n)
	floats.Scale(1/nf, dst)

	// Penalty gradient: w / (C*n), biases excluded.
	for b := 0; b < o.blocks(); b++ {
		off := b * (d + 1)
		for j := 0; j < d; j++ {
			dst[off+j] += w[off+j] / (o.c * nf)
		}
	}
}
