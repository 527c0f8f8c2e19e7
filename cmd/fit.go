package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/logisticfit/internal/dataset"
	"github.com/cwbudde/logisticfit/internal/logreg"
	"github.com/cwbudde/logisticfit/internal/opt"
	"github.com/cwbudde/logisticfit/internal/render"
	"github.com/spf13/cobra"
)

var (
	fitDataset   string
	fitFeatures  []string
	fitTarget    string
	fitSolver    string
	fitC         float64
	fitIters     int
	fitPopSize   int
	fitSeed      int64
	fitTestRatio float64
	fitOutDir    string
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a classifier on a built-in dataset",
	Long: `Fits a logistic (with --target) or softmax regression classifier and
prints accuracy and the confusion matrix. For two-feature fits the
decision boundary and loss curve are rendered into --out-dir.`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&fitDataset, "dataset", "iris", "Dataset name")
	fitCmd.Flags().StringSliceVar(&fitFeatures, "features", []string{"petal_length", "petal_width"}, "Feature columns to use (empty = all)")
	fitCmd.Flags().StringVar(&fitTarget, "target", "", "One-vs-rest target class (empty = multiclass softmax)")
	fitCmd.Flags().StringVar(&fitSolver, "solver", "bfgs", "Solver backend: bfgs, mayfly")
	fitCmd.Flags().Float64Var(&fitC, "C", 1.0, "Inverse regularization strength")
	fitCmd.Flags().IntVar(&fitIters, "iters", 100, "Max solver iterations")
	fitCmd.Flags().IntVar(&fitPopSize, "pop", 30, "Population size (mayfly only)")
	fitCmd.Flags().Int64Var(&fitSeed, "seed", 42, "Random seed for splitting and stochastic solvers")
	fitCmd.Flags().Float64Var(&fitTestRatio, "test-ratio", 0.2, "Held-out fraction for test accuracy (0 = train on everything)")
	fitCmd.Flags().StringVar(&fitOutDir, "out-dir", ".", "Directory for rendered charts")

	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	ds, err := dataset.Load(fitDataset)
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	if len(fitFeatures) > 0 {
		ds, err = ds.Select(fitFeatures...)
		if err != nil {
			return fmt.Errorf("failed to select features: %w", err)
		}
	}
	if fitTarget != "" {
		ds, err = ds.Binary(fitTarget)
		if err != nil {
			return fmt.Errorf("failed to binarize labels: %w", err)
		}
	}

	train, test := ds.Split(fitTestRatio, fitSeed)

	solver, ok := opt.New(fitSolver, fitIters, fitPopSize, fitSeed)
	if !ok {
		return fmt.Errorf("unknown solver: %s", fitSolver)
	}

	slog.Info("Starting fit", "dataset", fitDataset, "features", ds.FeatureNames, "solver", fitSolver, "train_rows", train.NumRows())

	clf := logreg.NewClassifier(solver, fitC)

	start := time.Now()
	if err := clf.Fit(train.X, train.Y); err != nil {
		return fmt.Errorf("fit failed: %w", err)
	}
	elapsed := time.Since(start)

	trainPred, err := clf.Predict(train.X)
	if err != nil {
		return err
	}
	trainAcc := logreg.Accuracy(trainPred, train.Y)

	conv := logreg.DefaultConvergenceConfig()
	if logreg.NewConvergenceTracker(conv).Scan(clf.History()) {
		slog.Info("Loss plateaued before the iteration budget", "patience", conv.Patience, "threshold", conv.Threshold)
	}

	fmt.Printf("Fit %s on %d rows (%d features, %d classes) in %s\n",
		fitSolver, train.NumRows(), clf.NumFeatures(), clf.NumClasses(), elapsed.Round(time.Millisecond))
	fmt.Printf("Loss: %.6f -> %.6f\n", clf.InitialLoss(), clf.BestLoss())
	fmt.Printf("Train accuracy: %.4f\n", trainAcc)

	if test != nil {
		testPred, err := clf.Predict(test.X)
		if err != nil {
			return err
		}
		fmt.Printf("Test accuracy:  %.4f (%d rows)\n", logreg.Accuracy(testPred, test.Y), test.NumRows())
		printConfusionMatrix(testPred, test.Y, test.ClassNames)
	} else {
		printConfusionMatrix(trainPred, train.Y, train.ClassNames)
	}

	if err := os.MkdirAll(fitOutDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	lossPath := filepath.Join(fitOutDir, "loss.png")
	if err := render.LossCurve(clf.History(), lossPath); err != nil {
		return fmt.Errorf("failed to render loss curve: %w", err)
	}
	fmt.Printf("Wrote %s\n", lossPath)

	if len(ds.FeatureNames) == 2 {
		boundaryPath := filepath.Join(fitOutDir, "boundary.png")
		if err := render.DecisionBoundary(clf, train, boundaryPath); err != nil {
			return fmt.Errorf("failed to render decision boundary: %w", err)
		}
		fmt.Printf("Wrote %s\n", boundaryPath)
	} else {
		slog.Info("Skipping decision boundary chart", "reason", "needs exactly 2 features", "features", len(ds.FeatureNames))
	}

	return nil
}

func printConfusionMatrix(pred, truth []int, classNames []string) {
	k := len(classNames)
	cm := logreg.ConfusionMatrix(pred, truth, k)

	fmt.Println("\nConfusion matrix (rows = truth, columns = predicted):")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)

	header := make([]string, 0, k+1)
	header = append(header, "")
	header = append(header, classNames...)
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for t := 0; t < k; t++ {
		row := make([]string, 0, k+1)
		row = append(row, classNames[t])
		for p := 0; p < k; p++ {
			row = append(row, fmt.Sprintf("%d", cm[t][p]))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}
