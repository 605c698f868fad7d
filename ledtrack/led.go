package ledtrack

import (
	kalman_filter "github.com/LdDl/kalman-filter"
	"github.com/pkg/errors"
)

// TrackedLED is one persistent identity slot (0..2) bound to a physical
// marker for the whole session. It owns a constant-velocity Kalman filter
// that smooths matched observations and extrapolates through frames without
// one.
type TrackedLED struct {
	identity         int
	rawPosition      Point
	smoothedPosition Point
	velocity         Point
	confidence       float64
	lastSeenFrame    int
	unseenFrames     int
	track            []Point
	maxTrackLen      int
	tracker          *kalman_filter.Kalman2D
}

// NewTrackedLED binds an identity to its first observation. The filter
// starts at the observed position with zero velocity; uncertainty settles
// over the next few updates.
func NewTrackedLED(identity int, observation FusedPoint, frameIdx int, cfg Config) *TrackedLED {
	position := observation.Position
	/* Kalman filter props */
	dt := 1.0 // discrete time step of one frame
	ux := 0.0 // no commanded acceleration
	uy := 0.0
	stdDevA := cfg.ProcessNoise
	stdDevMx := cfg.MeasurementNoise
	stdDevMy := cfg.MeasurementNoise
	kf := kalman_filter.NewKalman2D(dt, ux, uy, stdDevA, stdDevMx, stdDevMy,
		kalman_filter.WithState2D(position.X, position.Y))

	led := TrackedLED{
		identity:         identity,
		rawPosition:      position,
		smoothedPosition: position,
		velocity:         Point{X: 0, Y: 0},
		confidence:       observation.Confidence,
		lastSeenFrame:    frameIdx,
		unseenFrames:     0,
		track:            make([]Point, 0, 150),
		maxTrackLen:      150,
		tracker:          kf,
	}
	led.track = append(led.track, position)
	return &led
}

// Identity returns the persistent identity slot (0..2).
func (led *TrackedLED) Identity() int {
	return led.identity
}

// RawPosition returns the last validated observation before smoothing.
func (led *TrackedLED) RawPosition() Point {
	return led.rawPosition
}

// SmoothedPosition returns the filter's current position estimate.
func (led *TrackedLED) SmoothedPosition() Point {
	return led.smoothedPosition
}

// Velocity returns the estimated per-frame displacement.
func (led *TrackedLED) Velocity() Point {
	return led.velocity
}

// Confidence returns the detection confidence of the last matched
// observation.
func (led *TrackedLED) Confidence() float64 {
	return led.confidence
}

// LastSeenFrame returns the last frame index with a matched observation.
func (led *TrackedLED) LastSeenFrame() int {
	return led.lastSeenFrame
}

// UnseenFrames returns how many consecutive frames went by without a match.
func (led *TrackedLED) UnseenFrames() int {
	return led.unseenFrames
}

// Track returns the smoothed position history. Be careful: this is not a
// copy of the track, but a reference to it.
func (led *TrackedLED) Track() []Point {
	return led.track
}

// PredictOnly advances the filter one frame without an observation. The
// state keeps extrapolating along the last known velocity with growing
// uncertainty until an observation arrives.
func (led *TrackedLED) PredictOnly() {
	led.tracker.Predict()
	stateX, stateY := led.tracker.GetState()
	led.velocity = Point{X: stateX - led.smoothedPosition.X, Y: stateY - led.smoothedPosition.Y}
	led.smoothedPosition = Point{X: stateX, Y: stateY}
	led.unseenFrames++
}

// Observe runs the full predict/update cycle with a matched observation and
// replaces the reported position with the smoothed estimate.
func (led *TrackedLED) Observe(observation FusedPoint, frameIdx int) error {
	position := observation.Position
	led.rawPosition = position
	led.confidence = observation.Confidence
	led.tracker.Predict()
	if err := led.tracker.Update(position.X, position.Y); err != nil {
		return errors.Wrapf(err, "can't update filter for identity %d", led.identity)
	}
	stateX, stateY := led.tracker.GetState()
	led.velocity = Point{X: stateX - led.smoothedPosition.X, Y: stateY - led.smoothedPosition.Y}
	led.smoothedPosition = Point{X: stateX, Y: stateY}
	led.lastSeenFrame = frameIdx
	led.unseenFrames = 0

	led.track = append(led.track, led.smoothedPosition)
	if len(led.track) > led.maxTrackLen {
		led.track = led.track[1:]
	}
	return nil
}
