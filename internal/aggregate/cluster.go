package aggregate

import (
	"github.com/quorumlabs/quorum/internal/domain"
)

// member is one finding tagged with the reviewer that produced it.
// Clusters exist only during aggregation.
type member struct {
	ReviewerID string
	Finding    domain.Finding
}

// clusterFindings partitions the working set with single-linkage grouping:
// two findings land in the same cluster if they are compatible and score at
// or above the threshold, transitively. Every finding ends up in exactly
// one cluster. Cluster order follows the (already canonical) input order,
// so the result is a pure function of the input set.
func clusterFindings(members []member, sim SimilarityFunc, threshold float64) [][]member {
	n := len(members)
	if n == 0 {
		return nil
	}

	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	var find func(int) int
	find = func(i int) int {
		if parent[i] != i {
			parent[i] = find(parent[i])
		}
		return parent[i]
	}

	union := func(i, j int) {
		ri, rj := find(i), find(j)
		if ri == rj {
			return
		}
		// Keep the smaller index as root so cluster identity is stable.
		if ri < rj {
			parent[rj] = ri
		} else {
			parent[ri] = rj
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := &members[i].Finding, &members[j].Finding
			if !compatible(a, b) {
				continue
			}
			if sim(a, b) >= threshold {
				union(i, j)
			}
		}
	}

	// Emit clusters ordered by their smallest member index.
	byRoot := make(map[int][]member, n)
	var roots []int
	for i := range members {
		r := find(i)
		if _, seen := byRoot[r]; !seen {
			roots = append(roots, r)
		}
		byRoot[r] = append(byRoot[r], members[i])
	}

	clusters := make([][]member, 0, len(roots))
	for _, r := range roots {
		clusters = append(clusters, byRoot[r])
	}
	return clusters
}
