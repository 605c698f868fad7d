package ledtrack

// DetectionMethod identifies which extraction heuristic produced a candidate.
type DetectionMethod uint16

const (
	// MethodFixedThreshold is plain binarization at a fixed brightness cutoff
	// followed by connected-component labeling.
	MethodFixedThreshold DetectionMethod = iota
	// MethodAdaptiveThreshold binarizes against a local neighborhood mean,
	// which tolerates uneven illumination.
	MethodAdaptiveThreshold
	// MethodHoughCircles runs a generalized circle transform over the
	// blurred image.
	MethodHoughCircles
	// MethodBrightSaturation segments "bright and desaturated" pixels in HSV
	// space and refines centers with intensity-weighted moments.
	MethodBrightSaturation
)

func (m DetectionMethod) String() string {
	switch m {
	case MethodFixedThreshold:
		return "fixed_threshold"
	case MethodAdaptiveThreshold:
		return "adaptive_threshold"
	case MethodHoughCircles:
		return "hough_circles"
	case MethodBrightSaturation:
		return "bright_saturation"
	}
	return "unknown"
}

// Candidate is a single bright-blob detection reported by one extraction
// heuristic. Candidates live only until fusion.
type Candidate struct {
	Position   Point
	Confidence float64
	Method     DetectionMethod
}

// FusedPoint is the consensus of all candidates that different heuristics
// reported for the same physical blob. Position is the confidence-weighted
// mean of the cluster members, Confidence the plain mean.
type FusedPoint struct {
	Position   Point
	Confidence float64
}
