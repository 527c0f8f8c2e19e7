package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
)

var statusCmd = &cobra.Command{
	Use:   "status [job-id]",
	Short: "Query server status or specific job",
	Long: `Queries the server for job status information.
If no job-id is provided, lists all jobs.
If job-id is provided, shows detailed status for that job.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return listJobs(fmt.Sprintf("%s/api/v1/jobs", serverURL))
	}
	jobID := args[0]
	return getJobStatus(fmt.Sprintf("%s/api/v1/jobs/%s/status", serverURL, jobID), jobID)
}

func listJobs(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var jobs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&jobs); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	fmt.Printf("Found %d job(s):\n\n", len(jobs))
	for _, job := range jobs {
		config, _ := job["config"].(map[string]interface{})
		fmt.Printf("Job ID: %s\n", job["id"])
		fmt.Printf("  State: %s\n", job["state"])
		if config != nil {
			fmt.Printf("  Dataset: %v\n", config["dataset"])
			fmt.Printf("  Solver: %v\n", config["solver"])
		}
		if loss, ok := job["bestLoss"].(float64); ok && loss > 0 {
			fmt.Printf("  Loss: %.4f -> %.4f\n", job["initialLoss"], loss)
		}
		fmt.Println()
	}

	return nil
}

func getJobStatus(url, jobID string) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("job not found: %s", jobID)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned error: %s", string(body))
	}

	var status map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Job: %s\n", status["id"])
	fmt.Printf("State: %s\n", status["state"])
	fmt.Println()

	if config, ok := status["config"].(map[string]interface{}); ok {
		fmt.Println("Configuration:")
		fmt.Printf("  Dataset: %v\n", config["dataset"])
		fmt.Printf("  Features: %v\n", config["features"])
		if target, ok := config["target"].(string); ok && target != "" {
			fmt.Printf("  Target: %s (one-vs-rest)\n", target)
		}
		fmt.Printf("  Solver: %v\n", config["solver"])
		fmt.Printf("  C: %v\n", config["c"])
		fmt.Printf("  Iterations: %v\n", config["iters"])
		fmt.Println()
	}

	fmt.Println("Progress:")
	if initial, ok := status["initialLoss"].(float64); ok && initial > 0 {
		fmt.Printf("  Initial Loss: %.6f\n", initial)
		if best, ok := status["bestLoss"].(float64); ok && best > 0 {
			fmt.Printf("  Best Loss: %.6f\n", best)
			fmt.Printf("  Improvement: %.6f (%.1f%%)\n", initial-best, (initial-best)/initial*100)
		}
	}
	if acc, ok := status["trainAccuracy"].(float64); ok && acc > 0 {
		fmt.Printf("  Train Accuracy: %.4f\n", acc)
	}
	if acc, ok := status["testAccuracy"].(float64); ok && acc > 0 {
		fmt.Printf("  Test Accuracy: %.4f\n", acc)
	}

	if elapsed, ok := status["elapsed"].(float64); ok {
		fmt.Printf("  Elapsed: %s\n", time.Duration(elapsed*float64(time.Second)).Round(time.Millisecond))
	}
	if eps, ok := status["evalsPerSec"].(float64); ok && eps > 0 {
		fmt.Printf("  Throughput: %.0f evals/sec\n", eps)
	}

	if errMsg, ok := status["error"].(string); ok && errMsg != "" {
		fmt.Printf("\nError: %s\n", errMsg)
	}

	return nil
}
