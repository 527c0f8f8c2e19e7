package logreg

import "testing"

func TestConvergenceTracker_StallDetected(t *testing.T) {
	config := ConvergenceConfig{Enabled: true, Patience: 3, Threshold: 0.001}
	tracker := NewConvergenceTracker(config)

	if tracker.Update(1.0) {
		t.Error("First update should never converge")
	}

	// Flat history: each update is stale.
	converged := false
	for i := 0; i < 3; i++ {
		converged = tracker.Update(1.0)
	}
	if !converged {
		t.Error("Flat loss should converge after patience updates")
	}
}

func TestConvergenceTracker_ImprovementResets(t *testing.T) {
	config := ConvergenceConfig{Enabled: true, Patience: 2, Threshold: 0.01}
	tracker := NewConvergenceTracker(config)

	tracker.Update(1.0)
	tracker.Update(1.0) // stale 1
	if tracker.Update(0.5) {
		t.Error("Big improvement should not converge")
	}
	if tracker.StaleCount() != 0 {
		t.Errorf("Improvement should reset stale count, got %d", tracker.StaleCount())
	}
}

func TestConvergenceTracker_Disabled(t *testing.T) {
	tracker := NewConvergenceTracker(ConvergenceConfig{Enabled: false})

	for i := 0; i < 100; i++ {
		if tracker.Update(1.0) {
			t.Fatal("Disabled tracker should never converge")
		}
	}
}

func TestConvergenceTracker_Scan(t *testing.T) {
	config := DefaultConvergenceConfig()
	config.Patience = 5

	history := make([]float64, 50)
	for i := range history {
		history[i] = 1.0 // never improves
	}

	if !NewConvergenceTracker(config).Scan(history) {
		t.Error("Flat history should scan as converged")
	}

	improving := make([]float64, 50)
	loss := 1.0
	for i := range improving {
		improving[i] = loss
		loss *= 0.9
	}
	if NewConvergenceTracker(config).Scan(improving) {
		t.Error("Steadily improving history should not scan as converged")
	}

	if tracker := NewConvergenceTracker(config); tracker.BestLoss() <= 0 {
		// BestLoss starts at +Inf before any update.
		t.Error("Fresh tracker should report +Inf best loss")
	}
}
