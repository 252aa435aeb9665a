// ABOUTME: One-to-one assignment via the Hungarian algorithm.
// ABOUTME: Maximizes matched pairs meeting the threshold, then their total similarity.
package align

import "math"

// assignOneToOne returns a row-to-column assignment in which each column is
// used at most once. Pairs below threshold carry no weight and are dropped.
func assignOneToOne(sim [][]float64, threshold float64) []int {
	rows := len(sim)
	pairs := make([]int, rows)
	for i := range pairs {
		pairs[i] = -1
	}
	if rows == 0 || len(sim[0]) == 0 {
		return pairs
	}
	cols := len(sim[0])

	// The shift exceeds twice the largest possible matching size, so the
	// assignment first maximizes the number of qualifying pairs and only
	// then their total similarity.
	shift := float64(2*min(rows, cols) + 2)
	weight := func(i, j int) float64 {
		if s := sim[i][j]; meetsThreshold(s, threshold) {
			return s + shift
		}
		return 0
	}

	if rows <= cols {
		cost := make([][]float64, rows)
		for i := range cost {
			cost[i] = make([]float64, cols)
			for j := range cost[i] {
				cost[i][j] = -weight(i, j)
			}
		}
		for i, j := range hungarian(cost) {
			if weight(i, j) > 0 {
				pairs[i] = j
			}
		}
		return pairs
	}

	cost := make([][]float64, cols)
	for j := range cost {
		cost[j] = make([]float64, rows)
		for i := range cost[j] {
			cost[j][i] = -weight(i, j)
		}
	}
	for j, i := range hungarian(cost) {
		if weight(i, j) > 0 {
			pairs[i] = j
		}
	}
	return pairs
}

// hungarian solves the minimum-cost assignment for an n×m matrix with n ≤ m,
// returning the assigned column for each row.
func hungarian(cost [][]float64) []int {
	n, m := len(cost), len(cost[0])
	u := make([]float64, n+1)
	v := make([]float64, m+1)
	p := make([]int, m+1)
	way := make([]int, m+1)

	for i := 1; i <= n; i++ {
		p[0] = i
		j0 := 0
		minv := make([]float64, m+1)
		used := make([]bool, m+1)
		for j := range minv {
			minv[j] = math.Inf(1)
		}
		for {
			used[j0] = true
			i0, delta, j1 := p[j0], math.Inf(1), 0
			for j := 1; j <= m; j++ {
				if used[j] {
					continue
				}
				cur := cost[i0-1][j-1] - u[i0] - v[j]
				if cur < minv[j] {
					minv[j] = cur
					way[j] = j0
				}
				if minv[j] < delta {
					delta = minv[j]
					j1 = j
				}
			}
			for j := 0; j <= m; j++ {
				if used[j] {
					u[p[j]] += delta
					v[j] -= delta
				} else {
					minv[j] -= delta
				}
			}
			j0 = j1
			if p[j0] == 0 {
				break
			}
		}
		for j0 != 0 {
			j1 := way[j0]
			p[j0] = p[j1]
			j0 = j1
		}
	}

	assignment := make([]int, n)
	for j := 1; j <= m; j++ {
		if p[j] != 0 {
			assignment[p[j]-1] = j - 1
		}
	}
	return assignment
}
