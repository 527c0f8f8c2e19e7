package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/cwbudde/logisticfit/internal/dataset"
	"github.com/cwbudde/logisticfit/internal/logreg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// classColors are the scatter colors for up to three classes.
var classColors = []color.RGBA{
	{R: 50, G: 50, B: 255, A: 255},
	{R: 230, G: 120, B: 0, A: 255},
	{R: 30, G: 160, B: 30, A: 255},
}

// SigmoidCurve writes a line plot of the logistic function over [-8, 8].
func SigmoidCurve(path string) error {
	p := plot.New()
	p.Title.Text = "Logistic Function"
	p.X.Label.Text = "z"
	p.Y.Label.Text = "sigma(z)"

	pts := make(plotter.XYs, 0, 321)
	for z := -8.0; z <= 8.0; z += 0.05 {
		pts = append(pts, plotter.XY{X: z, Y: logreg.Sigmoid(z)})
	}

	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build sigmoid line: %w", err)
	}
	l.Color = classColors[0]
	l.LineStyle.Width = vg.Points(2)
	p.Add(l)
	p.Add(plotter.NewGrid())

	return save(p, path)
}

// DescentPath plots a descent trajectory as numbered dots over its loss
// surface, the classic "ball rolling down the bowl" picture.
func DescentPath(traj []float64, loss func(float64) float64, path string) error {
	if len(traj) == 0 {
		return fmt.Errorf("empty trajectory")
	}

	p := plot.New()
	p.Title.Text = "Gradient Descent"
	p.X.Label.Text = "x"
	p.Y.Label.Text = "loss"

	// Surface range covers the full trajectory with some slack.
	span := math.Abs(traj[0])
	for _, x := range traj {
		if a := math.Abs(x); a > span {
			span = a
		}
	}
	if span == 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		span = 1
	}
	span *= 1.2

	surface := make(plotter.XYs, 0, 201)
	for i := 0; i <= 200; i++ {
		x := -span + 2*span*float64(i)/200
		surface = append(surface, plotter.XY{X: x, Y: loss(x)})
	}

	l, err := plotter.NewLine(surface)
	if err != nil {
		return fmt.Errorf("failed to build loss surface: %w", err)
	}
	l.Color = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	p.Add(l)

	steps := make(plotter.XYs, len(traj))
	for i, x := range traj {
		steps[i] = plotter.XY{X: x, Y: loss(x)}
	}

	s, err := plotter.NewScatter(steps)
	if err != nil {
		return fmt.Errorf("failed to build trajectory scatter: %w", err)
	}
	s.GlyphStyle.Color = classColors[1]
	s.GlyphStyle.Radius = vg.Points(3)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(s)
	p.Legend.Add("steps", s)

	return save(p, path)
}

// LossCurve plots the loss recorded at each objective evaluation.
func LossCurve(history []float64, path string) error {
	if len(history) == 0 {
		return fmt.Errorf("empty loss history")
	}

	p := plot.New()
	p.Title.Text = "Training Loss"
	p.X.Label.Text = "evaluation"
	p.Y.Label.Text = "loss"

	pts := make(plotter.XYs, len(history))
	for i, v := range history {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}

	l, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build loss line: %w", err)
	}
	l.Color = classColors[0]
	p.Add(l)
	p.Add(plotter.NewGrid())

	return save(p, path)
}

// DecisionBoundary renders the fitted model's probability field over the
// plane of a two-feature dataset, with the data points scattered on top.
// Binary models shade P(class 1); multinomial models shade the predicted
// class region.
func DecisionBoundary(clf *logreg.Classifier, ds *dataset.Dataset, path string) error {
	_, d := ds.X.Dims()
	if d != 2 {
		return fmt.Errorf("decision boundary needs exactly 2 features, dataset has %d", d)
	}
	if clf.NumFeatures() != 2 {
		return fmt.Errorf("decision boundary needs a 2-feature model, got %d", clf.NumFeatures())
	}

	grid, err := probabilityGrid(clf, ds, 80)
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Decision Boundary"
	p.X.Label.Text = ds.FeatureNames[0]
	p.Y.Label.Text = ds.FeatureNames[1]

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	p.Add(hm)

	// One scatter per class so the legend carries the class names.
	for c := range ds.ClassNames {
		pts := plotter.XYs{}
		for i := 0; i < ds.NumRows(); i++ {
			if ds.Y[i] == c {
				pts = append(pts, plotter.XY{X: ds.X.At(i, 0), Y: ds.X.At(i, 1)})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return fmt.Errorf("failed to build class scatter: %w", err)
		}
		s.GlyphStyle.Color = classColors[c%len(classColors)]
		s.GlyphStyle.Radius = vg.Points(2.5)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(ds.ClassNames[c], s)
	}

	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
