package logreg

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/cwbudde/logisticfit/internal/opt"
	"gonum.org/v1/gonum/mat"
)

// weightBound is the box handed to bounded solver backends. Logistic
// weights on standardized-scale features never approach it in practice.
const weightBound = 25.0

// Classifier is a logistic (2 classes) or softmax (3+ classes)
// regression model. Coefficient estimation is delegated to an external
// solver through the opt.Optimizer interface; the classifier itself
// only defines the regularized cross-entropy objective and the
// predict/predict-proba transforms.
type Classifier struct {
	// C is the regularization strength: larger values mean a weaker
	// penalty on the coefficients (tighter training fit).
	C float64

	// OnEval, if set, is called after every objective evaluation with
	// the running evaluation count and the loss at that point.
	OnEval func(evals int, loss float64)

	solver      opt.Optimizer
	weights     []float64
	numFeatures int
	numClasses  int
	initialLoss float64
	bestLoss    float64
	history     []float64

	snapMu    sync.Mutex
	snapW     []float64
	snapLoss  float64
	snapValid bool
}

// NewClassifier creates an unfitted classifier delegating to the given solver.
func NewClassifier(solver opt.Optimizer, c float64) *Classifier {
	return &Classifier{
		C:      c,
		solver: solver,
	}
}

// Fit estimates the model coefficients on the given feature matrix and
// label vector. Labels must be integers in [0, k) with k >= 2.
func (m *Classifier) Fit(x *mat.Dense, y []int) error {
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return fmt.Errorf("empty feature matrix (%dx%d)", n, d)
	}
	if len(y) != n {
		return fmt.Errorf("label count %d does not match %d rows", len(y), n)
	}
	if m.C <= 0 {
		return fmt.Errorf("regularization strength must be positive, got %g", m.C)
	}

	k := 0
	for i, label := range y {
		if label < 0 {
			return fmt.Errorf("negative label %d at row %d", label, i)
		}
		if label+1 > k {
			k = label + 1
		}
	}
	if k < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", k)
	}

	obj := newObjective(x, y, k, m.C)
	dim := obj.dim()

	m.history = m.history[:0]
	m.snapMu.Lock()
	m.snapValid = false
	m.snapMu.Unlock()

	evals := 0
	eval := func(w []float64) float64 {
		loss := obj.value(w)
		evals++
		m.history = append(m.history, loss)
		m.snapMu.Lock()
		if !m.snapValid || loss < m.snapLoss {
			m.snapW = append(m.snapW[:0], w...)
			m.snapLoss = loss
			m.snapValid = true
		}
		m.snapMu.Unlock()
		if m.OnEval != nil {
			m.OnEval(evals, loss)
		}
		return loss
	}

	lower := make([]float64, dim)
	upper := make([]float64, dim)
	for i := 0; i < dim; i++ {
		lower[i] = -weightBound
		upper[i] = weightBound
	}

	initial := obj.value(make([]float64, dim))

	slog.Info("Fitting classifier", "rows", n, "features", d, "classes", k, "c", m.C, "initial_loss", initial)

	weights, loss, err := m.solver.Run(eval, obj.gradient, lower, upper, dim)
	if err != nil {
		return fmt.Errorf("solver failed: %w", err)
	}

	m.weights = weights
	m.numFeatures = d
	m.numClasses = k
	m.initialLoss = initial
	m.bestLoss = loss

	slog.Info("Fit complete", "loss", loss, "evaluations", evals)
	return nil
}

// PredictProba returns the n x k matrix of per-class probabilities.
// Rows sum to 1; for binary models the columns are [P(0), P(1)].
func (m *Classifier) PredictProba(x mat.Matrix) (*mat.Dense, error) {
	if m.weights == nil {
		return nil, fmt.Errorf("classifier is not fitted")
	}
	n, d := x.Dims()
	if d != m.numFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", m.numFeatures, d)
	}

	probs := mat.NewDense(n, m.numClasses, nil)

	if m.numClasses == 2 {
		for i := 0; i < n; i++ {
			z := m.weights[d] // bias
			for j := 0; j < d; j++ {
				z += m.weights[j] * x.At(i, j)
			}
			p := Sigmoid(z)
			probs.Set(i, 0, 1-p)
			probs.Set(i, 1, p)
		}
		return probs, nil
	}

	z := make([]float64, m.numClasses)
	p := make([]float64, m.numClasses)
	for i := 0; i < n; i++ {
		for b := 0; b < m.numClasses; b++ {
			off := b * (d + 1)
			z[b] = m.weights[off+d]
			for j := 0; j < d; j++ {
				z[b] += m.weights[off+j] * x.At(i, j)
			}
		}
		Softmax(p, z)
		probs.SetRow(i, p)
	}
	return probs, nil
}

// Predict returns the most probable class label for each row.
func (m *Classifier) Predict(x mat.Matrix) ([]int, error) {
	probs, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}

	n, _ := probs.Dims()
	labels := make([]int, n)
	for i := 0; i < n; i++ {
		best, bestP := 0, math.Inf(-1)
		for b := 0; b < m.numClasses; b++ {
			if p := probs.At(i, b); p > bestP {
				best, bestP = b, p
			}
		}
		labels[i] = best
	}
	return labels, nil
}

// Loss evaluates the regularized cross-entropy of the fitted weights on
// the given data.
func (m *Classifier) Loss(x *mat.Dense, y []int) (float64, error) {
	if m.weights == nil {
		return 0, fmt.Errorf("classifier is not fitted")
	}
	return newObjective(x, y, m.numClasses, m.C).value(m.weights), nil
}

// Weights returns a copy of the flat weight vector (see loss.go for the
// block layout). Nil before Fit.
func (m *Classifier) Weights() []float64 {
	if m.weights == nil {
		return nil
	}
	return append([]float64{}, m.weights...)
}

// Snapshot returns the best weight vector and loss observed so far by
// the running (or last) Fit. Safe to call concurrently with Fit, which
// is what periodic checkpointing relies on.
func (m *Classifier) Snapshot() ([]float64, float64, bool) {
	m.snapMu.Lock()
	defer m.snapMu.Unlock()
	if !m.snapValid {
		return nil, 0, false
	}
	return append([]float64{}, m.snapW...), m.snapLoss, true
}

// SetWeights restores a previously fitted weight vector, e.g. from a
// checkpoint, so predictions can be served without refitting.
func (m *Classifier) SetWeights(w []float64, numFeatures, numClasses int) error {
	if numClasses < 2 {
		return fmt.Errorf("need at least 2 classes, got %d", numClasses)
	}
	blocks := numClasses
	if numClasses == 2 {
		blocks = 1
	}
	if want := blocks * (numFeatures + 1); len(w) != want {
		return fmt.Errorf("weight length %d does not match %d features / %d classes (want %d)", len(w), numFeatures, numClasses, want)
	}
	m.weights = append([]float64{}, w...)
	m.numFeatures = numFeatures
	m.numClasses = numClasses
	return nil
}

// NumClasses returns the number of classes seen during Fit (0 if unfitted).
func (m *Classifier) NumClasses() int { return m.numClasses }

// NumFeatures returns the feature count seen during Fit (0 if unfitted).
func (m *Classifier) NumFeatures() int { return m.numFeatures }

// InitialLoss is the objective at the zero weight vector.
func (m *Classifier) InitialLoss() float64 { return m.initialLoss }

// BestLoss is the objective at the fitted weights.
func (m *Classifier) BestLoss() float64 { return m.bestLoss }

// History returns the loss at every objective evaluation of the last Fit.
func (m *Classifier) History() []float64 {
	return append([]float64{}, m.history...)
}
