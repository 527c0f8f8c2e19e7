package main

import (
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/cwbudde/logisticfit/internal/descent"
	"github.com/cwbudde/logisticfit/internal/render"
	"github.com/spf13/cobra"
)

var (
	traceStart     float64
	traceRate      float64
	traceSteps     int
	traceCurvature float64
	traceOutPath   string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Trace scalar gradient descent on a quadratic bowl",
	Long: `Runs gradient descent on the one-dimensional loss L(x) = a*x^2 and
prints the position, loss and gradient at every step. With --out the
trajectory is also rendered on top of the loss surface.

The update rule is x <- x - rate * L'(x). Rates above 1/(2a) overshoot
and oscillate, rates above 1/a diverge, and tiny rates crawl. Try
--rate 0.95 from --start -8 to watch the overshoot case.`,
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().Float64Var(&traceStart, "start", 8.0, "Starting position x0")
	traceCmd.Flags().Float64Var(&traceRate, "rate", 0.1, "Learning rate")
	traceCmd.Flags().IntVar(&traceSteps, "steps", descent.DefaultSteps, "Number of descent steps")
	traceCmd.Flags().Float64Var(&traceCurvature, "curvature", 1.0, "Bowl curvature a in L(x) = a*x^2")
	traceCmd.Flags().StringVar(&traceOutPath, "out", "", "Optional chart output path (PNG)")

	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	if traceSteps < 0 {
		return fmt.Errorf("steps must be non-negative, got %d", traceSteps)
	}

	slog.Info("Tracing gradient descent", "start", traceStart, "rate", traceRate, "steps", traceSteps, "curvature", traceCurvature)

	grad := descent.Quadratic(traceCurvature)
	loss := descent.Bowl(traceCurvature)
	traj := descent.Trace(traceStart, traceRate, grad, traceSteps)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tX\tLOSS\tGRADIENT")
	fmt.Fprintln(w, "----\t-\t----\t--------")
	for i, x := range traj {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\n", i, x, loss(x), grad(x))
	}
	w.Flush()

	first, last := traj[0], traj[len(traj)-1]
	fmt.Printf("\nLoss: %.6f -> %.6f over %d steps\n", loss(first), loss(last), traceSteps)

	if traceOutPath != "" {
		if err := render.DescentPath(traj, loss, traceOutPath); err != nil {
			return fmt.Errorf("failed to render trajectory: %w", err)
		}
		fmt.Printf("Wrote %s\n", traceOutPath)
	}

	return nil
}
