package ledtrack

import (
	"math"
	"sort"
)

// Triplet is an accepted combination of three fused points in line order
// (P1, P2, P3 along the pattern's principal axis) with its derived metrics.
type Triplet struct {
	Points [3]FusedPoint
	// Maximum perpendicular distance of any point to the line through the
	// two extremes, in pixels.
	CollinearityError float64
	// d12/d23. 1.0 means perfectly equal spacing.
	SpacingRatio float64
	D12          float64
	D23          float64
}

// Span returns the total extent |P1P3| of the triplet.
func (t Triplet) Span() float64 {
	return euclideanDistance(t.Points[0].Position, t.Points[2].Position)
}

// Validator searches fused points for the one combination of three that
// matches the known physical pattern: three markers on a line, roughly
// equally spaced, at plausible scale. Its contract is "never detect
// incorrectly" — when nothing qualifies, the frame yields no detection.
type Validator struct {
	cfg Config
}

// NewValidator creates a validator with the given geometric gates.
func NewValidator(cfg Config) *Validator {
	return &Validator{cfg: cfg}
}

// FindBestTriplet exhaustively enumerates all 3-combinations of the fused
// points and returns the valid one with the lowest collinearity error, ties
// broken by spacing ratio closest to 1. The second return value is false
// when no combination passes the gates.
//
// The search is O(n^3) in the number of points. That is deliberate: the true
// pattern is not always the brightest or the most central points, so any
// shortcut that narrows the enumeration would silently narrow correctness.
// n stays below a few dozen per frame, so the cubic cost is irrelevant.
func (v *Validator) FindBestTriplet(points []FusedPoint) (Triplet, bool) {
	if len(points) < 3 {
		// InsufficientCandidates: same outcome as no valid triplet, just
		// without the search.
		return Triplet{}, false
	}

	// Cheap bounding check: any pair further apart than the maximal span of
	// a valid pattern can never form one.
	maxSpan := 2 * v.cfg.MaxLEDDistance

	var best Triplet
	found := false
	for i := 0; i < len(points); i++ {
		for j := i + 1; j < len(points); j++ {
			if euclideanDistance(points[i].Position, points[j].Position) > maxSpan {
				continue
			}
			for k := j + 1; k < len(points); k++ {
				t, ok := v.evaluate(points[i], points[j], points[k])
				if !ok {
					continue
				}
				if !found || betterTriplet(t, best) {
					best = t
					found = true
				}
			}
		}
	}
	return best, found
}

// betterTriplet orders triplets by collinearity error, then by spacing ratio
// distance to 1.
func betterTriplet(a, b Triplet) bool {
	if a.CollinearityError != b.CollinearityError {
		return a.CollinearityError < b.CollinearityError
	}
	return math.Abs(a.SpacingRatio-1.0) < math.Abs(b.SpacingRatio-1.0)
}

// evaluate orders one combination along its principal axis, computes its
// metrics and applies the gates.
func (v *Validator) evaluate(a, b, c FusedPoint) (Triplet, bool) {
	ordered := orderAlongAxis(a, b, c)
	p1 := ordered[0].Position
	p2 := ordered[1].Position
	p3 := ordered[2].Position

	d12 := euclideanDistance(p1, p2)
	d23 := euclideanDistance(p2, p3)

	// Degenerate geometry: coincident points make the spacing ratio
	// undefined. A constraint failure, not a computation fault.
	if d23 < 1e-6 || d12 < 1e-6 {
		return Triplet{}, false
	}
	ratio := d12 / d23

	// The extremes define the line, so only the middle point can deviate
	// from it; taking the max over all three keeps the definition honest.
	colErr := math.Max(perpendicularDistance(p2, p1, p3),
		math.Max(perpendicularDistance(p1, p1, p3), perpendicularDistance(p3, p1, p3)))

	if colErr >= v.cfg.MaxCollinearityError {
		return Triplet{}, false
	}
	if ratio < 1-v.cfg.SpacingTolerance || ratio > 1+v.cfg.SpacingTolerance {
		return Triplet{}, false
	}
	if d12 < v.cfg.MinLEDDistance || d12 > v.cfg.MaxLEDDistance ||
		d23 < v.cfg.MinLEDDistance || d23 > v.cfg.MaxLEDDistance {
		return Triplet{}, false
	}

	return Triplet{
		Points:            ordered,
		CollinearityError: colErr,
		SpacingRatio:      ratio,
		D12:               d12,
		D23:               d23,
	}, true
}

// orderAlongAxis sorts three points by their projection onto the axis
// between the two extremes (the most distant pair). The axis direction is
// normalized so P1 is the left-most extreme (top-most on vertical patterns),
// which keeps line order deterministic frame to frame.
func orderAlongAxis(a, b, c FusedPoint) [3]FusedPoint {
	pts := [3]FusedPoint{a, b, c}

	// Find the most distant pair; they are the pattern's extremes.
	ei, ej := 0, 1
	maxDist := -1.0
	for i := 0; i < 3; i++ {
		for j := i + 1; j < 3; j++ {
			d := euclideanDistance(pts[i].Position, pts[j].Position)
			if d > maxDist {
				maxDist = d
				ei, ej = i, j
			}
		}
	}

	origin, end := pts[ei].Position, pts[ej].Position
	if end.X < origin.X || (end.X == origin.X && end.Y < origin.Y) {
		origin, end = end, origin
	}

	sorted := pts[:]
	sort.SliceStable(sorted, func(i, j int) bool {
		return projectOnAxis(sorted[i].Position, origin, end) < projectOnAxis(sorted[j].Position, origin, end)
	})
	return [3]FusedPoint{sorted[0], sorted[1], sorted[2]}
}
