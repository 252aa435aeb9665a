// ABOUTME: Greedy per-heading argmax assignment.
// ABOUTME: Ties resolve to the lowest B index; claims are not exclusive.
package align

// assignGreedy returns, for each row, the column of its best score when that
// score meets the threshold, or -1.
func assignGreedy(sim [][]float64, threshold float64) []int {
	pairs := make([]int, len(sim))
	for i, row := range sim {
		pairs[i] = -1
		if len(row) == 0 {
			continue
		}
		best := 0
		for j := 1; j < len(row); j++ {
			if row[j] > row[best] {
				best = j
			}
		}
		if meetsThreshold(row[best], threshold) {
			pairs[i] = best
		}
	}
	return pairs
}
