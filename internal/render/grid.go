package render

import (
	"github.com/cwbudde/logisticfit/internal/dataset"
	"github.com/cwbudde/logisticfit/internal/logreg"
	"gonum.org/v1/gonum/mat"
)

// probGrid holds model output sampled over a regular plane of two
// features, in the column/row form the heatmap plotter expects.
type probGrid struct {
	xs, ys []float64
	z      []float64 // row-major, len(xs)*len(ys)
}

func (g *probGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *probGrid) X(c int) float64    { return g.xs[c] }
func (g *probGrid) Y(r int) float64    { return g.ys[r] }
func (g *probGrid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }

// probabilityGrid evaluates the classifier over a steps x steps lattice
// covering the dataset's two feature columns with a small margin.
func probabilityGrid(clf *logreg.Classifier, ds *dataset.Dataset, steps int) (*probGrid, error) {
	n := ds.NumRows()

	xMin, xMax := ds.X.At(0, 0), ds.X.At(0, 0)
	yMin, yMax := ds.X.At(0, 1), ds.X.At(0, 1)
	for i := 1; i < n; i++ {
		if v := ds.X.At(i, 0); v < xMin {
			xMin = v
		} else if v > xMax {
			xMax = v
		}
		if v := ds.X.At(i, 1); v < yMin {
			yMin = v
		} else if v > yMax {
			yMax = v
		}
	}
	const margin = 0.5
	xMin, xMax = xMin-margin, xMax+margin
	yMin, yMax = yMin-margin, yMax+margin

	g := &probGrid{
		xs: make([]float64, steps),
		ys: make([]float64, steps),
		z:  make([]float64, steps*steps),
	}
	for i := 0; i < steps; i++ {
		g.xs[i] = xMin + (xMax-xMin)*float64(i)/float64(steps-1)
		g.ys[i] = yMin + (yMax-yMin)*float64(i)/float64(steps-1)
	}

	// Single batched prediction over every lattice point.
	points := mat.NewDense(steps*steps, 2, nil)
	for r := 0; r < steps; r++ {
		for c := 0; c < steps; c++ {
			points.Set(r*steps+c, 0, g.xs[c])
			points.Set(r*steps+c, 1, g.ys[r])
		}
	}

	probs, err := clf.PredictProba(points)
	if err != nil {
		return nil, err
	}

	k := clf.NumClasses()
	for i := range g.z {
		if k == 2 {
			g.z[i] = probs.At(i, 1)
			continue
		}
		best, bestP := 0, probs.At(i, 0)
		for c := 1; c < k; c++ {
			if p := probs.At(i, c); p > bestP {
				best, bestP = c, p
			}
		}
		g.z[i] = float64(best)
	}

	return g, nil
}
