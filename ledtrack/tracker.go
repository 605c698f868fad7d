package ledtrack

import (
	"sort"

	hungarian "github.com/arthurkushman/go-hungarian"
	"github.com/pkg/errors"
)

// IdentityTracker maps accepted triplets (in line order, not identity order)
// onto persistent identities 0..2, so "LED 1" always denotes the same
// physical marker across the session.
//
// Matching is greedy nearest-neighbor by default: identity/point pairs are
// claimed in ascending distance order, gated by the maximum jump distance.
// This is not a true bipartite optimum, but the validator only emits
// well-separated points, so greedy and optimal coincide in practice. The
// Hungarian algorithm is available for callers that want the optimum anyway.
type IdentityTracker struct {
	cfg Config
	// Main storage, keyed by identity slot.
	Objects map[int]*TrackedLED
}

// NewIdentityTracker creates an empty tracker; identities are bound on the
// first accepted triplet.
func NewIdentityTracker(cfg Config) *IdentityTracker {
	return &IdentityTracker{
		cfg:     cfg,
		Objects: make(map[int]*TrackedLED),
	}
}

// Step advances the tracker by one frame.
//
// A nil triplet means the frame was rejected upstream: every identity runs
// prediction-only and ok is false. With an accepted triplet, the three
// points are matched to identities; only a complete assignment produces a
// reported frame (whole-or-nothing). An incomplete assignment downgrades
// the frame to a rejection unless every identity has been unseen long
// enough that the pattern is re-acquired from scratch.
func (tracker *IdentityTracker) Step(t *Triplet, frameIdx int) ([]*TrackedLED, bool, error) {
	if t == nil {
		tracker.predictAll()
		return nil, false, nil
	}

	// First accepted triplet: bind identities in P1->P3 line order.
	if len(tracker.Objects) == 0 {
		return tracker.bind(t.Points, frameIdx), true, nil
	}

	points := []Point{t.Points[0].Position, t.Points[1].Position, t.Points[2].Position}
	pointIdentity := tracker.Match(points)
	matched := 0
	for _, id := range pointIdentity {
		if id >= 0 {
			matched++
		}
	}

	if matched == tracker.cfg.ExpectedLEDs {
		for pointIdx, id := range pointIdentity {
			if err := tracker.Objects[id].Observe(t.Points[pointIdx], frameIdx); err != nil {
				return nil, false, errors.Wrapf(err, "can't observe point %d", pointIdx)
			}
		}
		return tracker.inIdentityOrder(), true, nil
	}

	// A detection gap long enough that every identity went stale forces
	// re-acquisition: the triplet rebinds identities fresh in line order.
	if tracker.allStale() {
		return tracker.bind(t.Points, frameIdx), true, nil
	}

	// Otherwise the pattern jumped implausibly for at least one identity.
	// Reporting nothing beats reporting a misassigned marker.
	tracker.predictAll()
	return nil, false, nil
}

// Match assigns each point the identity that claims it, or -1. It does not
// mutate filter state; Step drives the filters from its result.
func (tracker *IdentityTracker) Match(points []Point) []int {
	if tracker.cfg.Matching == MatchingAlgorithmHungarian {
		return tracker.matchHungarian(points)
	}
	return tracker.matchGreedy(points)
}

// matchGreedy claims identity/point pairs in ascending distance order via a
// min-heap, skipping pairs beyond the maximum jump. Each identity and each
// point is claimed at most once. Equal distances resolve in heap pop order.
func (tracker *IdentityTracker) matchGreedy(points []Point) []int {
	pointIdentity := make([]int, len(points))
	for i := range pointIdentity {
		pointIdentity[i] = -1
	}

	priorityQueue := make(matchHeap, 0, len(tracker.Objects)*len(points))
	for id, led := range tracker.Objects {
		for pointIdx, p := range points {
			dist := euclideanDistance(led.SmoothedPosition(), p)
			if dist > tracker.cfg.MaxJump {
				continue
			}
			priorityQueue.Push(matchPair{identity: id, pointIdx: pointIdx, distance: dist})
		}
	}

	claimedIdentity := make(map[int]struct{})
	for priorityQueue.Len() > 0 {
		pair := priorityQueue.Pop()
		if _, ok := claimedIdentity[pair.identity]; ok {
			continue
		}
		if pointIdentity[pair.pointIdx] >= 0 {
			continue
		}
		pointIdentity[pair.pointIdx] = pair.identity
		claimedIdentity[pair.identity] = struct{}{}
	}
	return pointIdentity
}

// matchHungarian builds a similarity matrix (zero beyond the jump gate) and
// solves the optimal assignment, padding rectangular matrices the same way
// the maximum-score solver expects square input.
func (tracker *IdentityTracker) matchHungarian(points []Point) []int {
	pointIdentity := make([]int, len(points))
	for i := range pointIdentity {
		pointIdentity[i] = -1
	}
	if len(tracker.Objects) == 0 || len(points) == 0 {
		return pointIdentity
	}

	identities := make([]int, 0, len(tracker.Objects))
	for id := range tracker.Objects {
		identities = append(identities, id)
	}
	sort.Ints(identities)

	size := len(identities)
	if len(points) > size {
		size = len(points)
	}
	matrix := make([][]float64, size)
	for i := range matrix {
		matrix[i] = make([]float64, size)
	}
	for i, id := range identities {
		for j, p := range points {
			dist := euclideanDistance(tracker.Objects[id].SmoothedPosition(), p)
			if dist > tracker.cfg.MaxJump {
				continue
			}
			// Similarity in (0, 1]; padding cells stay at zero.
			matrix[i][j] = 1.0 / (1.0 + dist)
		}
	}

	assignments := hungarian.SolveMax(matrix)
	for row, cols := range assignments {
		if row >= len(identities) {
			continue
		}
		for col, score := range cols {
			if col < len(points) && score > 0 {
				pointIdentity[col] = identities[row]
			}
			break
		}
	}
	return pointIdentity
}

// bind (re)creates identity slots from a triplet in line order.
func (tracker *IdentityTracker) bind(points [3]FusedPoint, frameIdx int) []*TrackedLED {
	tracker.Objects = make(map[int]*TrackedLED, len(points))
	for i, p := range points {
		tracker.Objects[i] = NewTrackedLED(i, p, frameIdx, tracker.cfg)
	}
	return tracker.inIdentityOrder()
}

func (tracker *IdentityTracker) predictAll() {
	for _, led := range tracker.Objects {
		led.PredictOnly()
	}
}

// allStale reports whether every identity has gone unseen for at least the
// re-acquisition gap.
func (tracker *IdentityTracker) allStale() bool {
	if len(tracker.Objects) == 0 {
		return true
	}
	for _, led := range tracker.Objects {
		if led.UnseenFrames() < tracker.cfg.ReacquireAfter {
			return false
		}
	}
	return true
}

func (tracker *IdentityTracker) inIdentityOrder() []*TrackedLED {
	leds := make([]*TrackedLED, 0, len(tracker.Objects))
	for _, led := range tracker.Objects {
		leds = append(leds, led)
	}
	sort.Slice(leds, func(i, j int) bool { return leds[i].Identity() < leds[j].Identity() })
	return leds
}
