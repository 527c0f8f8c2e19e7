package logreg

// Accuracy is the fraction of predictions matching the true labels.
// Returns 0 for empty input.
func Accuracy(pred, truth []int) float64 {
	if len(pred) == 0 || len(pred) != len(truth) {
		return 0
	}
	hits := 0
	for i := range pred {
		if pred[i] == truth[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(pred))
}

// ConfusionMatrix returns a k x k matrix where entry [t][p] counts rows
// with true label t predicted as p.
func ConfusionMatrix(pred, truth []int, k int) [][]int {
	cm := make([][]int, k)
	for i := range cm {
		cm[i] = make([]int, k)
	}
	for i := range pred {
		if truth[i] >= 0 && truth[i] < k && pred[i] >= 0 && pred[i] < k {
			cm[truth[i]][pred[i]]++
		}
	}
	return cm
}
