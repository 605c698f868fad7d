package ledtrack

import "sort"

// FuseCandidates merges candidates that different heuristics reported for
// the same physical blob into consensus scene points.
//
// The clustering is first-fit single linkage: candidates are visited in
// confidence-descending order and each one either joins the first cluster
// whose seed lies within the merge radius or starts a new cluster. This is
// order-dependent and not an optimal clustering; borderline candidates may
// land differently depending on visit order. The geometric validator filters
// bad fusions downstream, so the approximation is accepted.
func FuseCandidates(candidates []Candidate, mergeRadius float64) []FusedPoint {
	if len(candidates) == 0 {
		return nil
	}

	ordered := make([]Candidate, len(candidates))
	copy(ordered, candidates)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Confidence > ordered[j].Confidence
	})

	used := make([]bool, len(ordered))
	var fused []FusedPoint
	for i := range ordered {
		if used[i] {
			continue
		}
		cluster := []Candidate{ordered[i]}
		used[i] = true
		for j := i + 1; j < len(ordered); j++ {
			if used[j] {
				continue
			}
			if euclideanDistance(ordered[i].Position, ordered[j].Position) < mergeRadius {
				cluster = append(cluster, ordered[j])
				used[j] = true
			}
		}
		fused = append(fused, fuseCluster(cluster))
	}
	return fused
}

// fuseCluster collapses one cluster into a single point: position is the
// confidence-weighted mean, confidence the plain mean.
func fuseCluster(cluster []Candidate) FusedPoint {
	var sumW, sumX, sumY, sumConf float64
	for _, c := range cluster {
		w := c.Confidence
		sumW += w
		sumX += c.Position.X * w
		sumY += c.Position.Y * w
		sumConf += c.Confidence
	}
	n := float64(len(cluster))
	if sumW <= 0 {
		// All-zero confidences degenerate to a plain mean.
		for _, c := range cluster {
			sumX += c.Position.X
			sumY += c.Position.Y
		}
		return FusedPoint{Position: NewPoint(sumX/n, sumY/n)}
	}
	return FusedPoint{
		Position:   NewPoint(sumX/sumW, sumY/sumW),
		Confidence: sumConf / n,
	}
}
