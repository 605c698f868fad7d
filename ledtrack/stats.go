package ledtrack

import (
	"math"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"
)

// JitterStatistics summarizes frame-to-frame step lengths of one identity.
type JitterStatistics struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Max  float64 `json:"max"`
}

// LEDStatistics holds the robust per-identity summary over the session.
type LEDStatistics struct {
	Identity       int     `json:"led_id"`
	DetectedFrames int     `json:"detected_frames"`
	MeanPosition   Point   `json:"mean_position"`
	StdDeviation   float64 `json:"std_deviation"`
	StdX           float64 `json:"std_x"`
	StdY           float64 `json:"std_y"`
	MinX           float64 `json:"min_x"`
	MaxX           float64 `json:"max_x"`
	MinY           float64 `json:"min_y"`
	MaxY           float64 `json:"max_y"`
	RangeX         float64 `json:"range_x"`
	RangeY         float64 `json:"range_y"`
	// LowConfidence marks identities with too few samples for outlier
	// filtering; their statistics are raw.
	LowConfidence bool             `json:"low_confidence"`
	Jitter        JitterStatistics `json:"jitter"`
}

// SessionStatistics is the end-of-session aggregate over all frame results.
type SessionStatistics struct {
	SessionID        uuid.UUID       `json:"session_id"`
	TotalFrames      int             `json:"total_frames"`
	SuccessfulFrames int             `json:"successful_frames"`
	SuccessRate      float64         `json:"success_rate"`
	CollinearityMean float64         `json:"collinearity_mean"`
	CollinearityMax  float64         `json:"collinearity_max"`
	SpacingRatioMean float64         `json:"spacing_ratio_mean"`
	SpacingRatioStd  float64         `json:"spacing_ratio_std"`
	LEDs             []LEDStatistics `json:"leds"`
}

// ComputeStatistics aggregates a full frame sequence into per-identity and
// session-level statistics, robust to residual tracking errors via IQR
// outlier rejection.
func ComputeStatistics(sessionID uuid.UUID, results []FrameResult, cfg Config) SessionStatistics {
	stats := SessionStatistics{
		SessionID:   sessionID,
		TotalFrames: len(results),
	}

	var colErrs, ratios []float64
	positions := make(map[int][]Point)
	for _, r := range results {
		if !r.Success {
			continue
		}
		stats.SuccessfulFrames++
		colErrs = append(colErrs, r.CollinearityError)
		ratios = append(ratios, r.SpacingRatio)
		for _, led := range r.LEDs {
			positions[led.Identity] = append(positions[led.Identity], led.Position)
		}
	}
	if stats.TotalFrames > 0 {
		stats.SuccessRate = float64(stats.SuccessfulFrames) / float64(stats.TotalFrames)
	}
	if len(colErrs) > 0 {
		stats.CollinearityMean = stat.Mean(colErrs, nil)
		stats.CollinearityMax = maxOf(colErrs)
		stats.SpacingRatioMean = stat.Mean(ratios, nil)
		if len(ratios) > 1 {
			stats.SpacingRatioStd = stat.StdDev(ratios, nil)
		}
	}

	for identity := 0; identity < cfg.ExpectedLEDs; identity++ {
		stats.LEDs = append(stats.LEDs, computeLEDStatistics(identity, positions[identity], cfg))
	}
	return stats
}

func computeLEDStatistics(identity int, pts []Point, cfg Config) LEDStatistics {
	s := LEDStatistics{Identity: identity}
	if len(pts) == 0 {
		return s
	}

	// Jitter is measured over the reported sequence, before outlier
	// rejection, since it characterizes the tracker rather than the scene.
	s.Jitter = jitterOf(pts)

	retained := pts
	if len(pts) >= cfg.MinFilterSamples {
		retained = FilterOutliersIQR(pts, cfg.IQRMultiplier)
	} else {
		s.LowConfidence = true
	}
	s.DetectedFrames = len(retained)
	if len(retained) == 0 {
		return s
	}

	xs := make([]float64, len(retained))
	ys := make([]float64, len(retained))
	for i, p := range retained {
		xs[i] = p.X
		ys[i] = p.Y
	}
	s.MeanPosition = NewPoint(stat.Mean(xs, nil), stat.Mean(ys, nil))

	// Overall precision is the spread of Euclidean deviations from the mean.
	deviations := make([]float64, len(retained))
	for i, p := range retained {
		deviations[i] = euclideanDistance(p, s.MeanPosition)
	}
	if len(retained) > 1 {
		s.StdDeviation = stat.StdDev(deviations, nil)
		s.StdX = stat.StdDev(xs, nil)
		s.StdY = stat.StdDev(ys, nil)
	}
	s.MinX, s.MaxX = minOf(xs), maxOf(xs)
	s.MinY, s.MaxY = minOf(ys), maxOf(ys)
	s.RangeX = s.MaxX - s.MinX
	s.RangeY = s.MaxY - s.MinY
	return s
}

// FilterOutliersIQR rejects samples outside [Q1 - k*IQR, Q3 + k*IQR] on
// either axis, with quartiles computed per axis independently. Applying the
// filter twice in a row retains the same set as applying it once, because
// the bounds come from quartiles, which barely move when the tails go.
func FilterOutliersIQR(pts []Point, multiplier float64) []Point {
	if len(pts) == 0 {
		return nil
	}
	xs := make([]float64, len(pts))
	ys := make([]float64, len(pts))
	for i, p := range pts {
		xs[i] = p.X
		ys[i] = p.Y
	}
	loX, hiX := iqrBounds(xs, multiplier)
	loY, hiY := iqrBounds(ys, multiplier)

	retained := make([]Point, 0, len(pts))
	for _, p := range pts {
		if p.X < loX || p.X > hiX || p.Y < loY || p.Y > hiY {
			continue
		}
		retained = append(retained, p)
	}
	return retained
}

func iqrBounds(values []float64, multiplier float64) (float64, float64) {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
	q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
	iqr := q3 - q1
	return q1 - multiplier*iqr, q3 + multiplier*iqr
}

func jitterOf(pts []Point) JitterStatistics {
	if len(pts) < 2 {
		return JitterStatistics{}
	}
	steps := make([]float64, len(pts)-1)
	for i := 1; i < len(pts); i++ {
		steps[i-1] = euclideanDistance(pts[i], pts[i-1])
	}
	j := JitterStatistics{
		Mean: stat.Mean(steps, nil),
		Max:  maxOf(steps),
	}
	if len(steps) > 1 {
		j.Std = stat.StdDev(steps, nil)
	}
	return j
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		m = math.Max(m, v)
	}
	return m
}
