package ledtrack

import (
	"math"
	"testing"
)

func TestFuseCandidatesMergesNearby(t *testing.T) {
	candidates := []Candidate{
		{Position: NewPoint(100, 100), Confidence: 0.9, Method: MethodFixedThreshold},
		{Position: NewPoint(102, 101), Confidence: 0.6, Method: MethodAdaptiveThreshold},
		{Position: NewPoint(99, 98), Confidence: 0.5, Method: MethodHoughCircles},
		{Position: NewPoint(300, 200), Confidence: 0.8, Method: MethodFixedThreshold},
	}

	fused := FuseCandidates(candidates, 20.0)
	if len(fused) != 2 {
		t.Errorf("incorrect number of fused points: %d, expected: %d", len(fused), 2)
		return
	}

	// Highest-confidence candidate seeds the first cluster, so the fused
	// position must lie near (100, 100) and be pulled by the weights.
	first := fused[0]
	if euclideanDistance(first.Position, NewPoint(100, 100)) > 3.0 {
		t.Errorf("fused position too far from cluster: %v", first.Position)
	}
	wantConf := (0.9 + 0.6 + 0.5) / 3.0
	if math.Abs(first.Confidence-wantConf) > eps {
		t.Errorf("incorrect fused confidence: %v, expected: %v", first.Confidence, wantConf)
	}

	second := fused[1]
	if euclideanDistance(second.Position, NewPoint(300, 200)) > eps {
		t.Errorf("singleton cluster moved: %v", second.Position)
	}
}

func TestFuseCandidatesKeepsDistant(t *testing.T) {
	candidates := []Candidate{
		{Position: NewPoint(100, 100), Confidence: 0.5},
		{Position: NewPoint(125, 100), Confidence: 0.5},
	}
	fused := FuseCandidates(candidates, 20.0)
	if len(fused) != 2 {
		t.Errorf("incorrect number of fused points: %d, expected: %d", len(fused), 2)
	}
}

func TestFuseCandidatesWeightedMean(t *testing.T) {
	candidates := []Candidate{
		{Position: NewPoint(100, 100), Confidence: 0.75},
		{Position: NewPoint(104, 100), Confidence: 0.25},
	}
	fused := FuseCandidates(candidates, 20.0)
	if len(fused) != 1 {
		t.Errorf("incorrect number of fused points: %d, expected: %d", len(fused), 1)
		return
	}
	// (100*0.75 + 104*0.25) / 1.0 = 101
	if math.Abs(fused[0].Position.X-101.0) > eps {
		t.Errorf("incorrect weighted mean: %v, expected: %v", fused[0].Position.X, 101.0)
	}
}

func TestFuseCandidatesZeroConfidence(t *testing.T) {
	candidates := []Candidate{
		{Position: NewPoint(100, 100), Confidence: 0},
		{Position: NewPoint(104, 102), Confidence: 0},
	}
	fused := FuseCandidates(candidates, 20.0)
	if len(fused) != 1 {
		t.Errorf("incorrect number of fused points: %d, expected: %d", len(fused), 1)
		return
	}
	if math.Abs(fused[0].Position.X-102.0) > eps || math.Abs(fused[0].Position.Y-101.0) > eps {
		t.Errorf("incorrect plain mean fallback: %v", fused[0].Position)
	}
}

func TestFuseCandidatesEmpty(t *testing.T) {
	fused := FuseCandidates(nil, 20.0)
	if fused != nil {
		t.Errorf("expected nil for empty input, got: %v", fused)
	}
}
