package ledtrack

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// TrackerSession owns all mutable pipeline state for one video: the
// extractor, the validator, the identity tracker with its per-LED filters,
// and the collected frame results. Frames must be fed strictly in order,
// one at a time; frame N mutates the tracker state frame N+1 depends on.
type TrackerSession struct {
	cfg       Config
	id        uuid.UUID
	fps       float64
	extractor *Extractor
	validator *Validator
	tracker   *IdentityTracker
	frameIdx  int
	results   []FrameResult
}

// NewTrackerSession creates a session. fps is used for frame timestamps
// only; pass 0 when unknown.
func NewTrackerSession(cfg Config, fps float64) (*TrackerSession, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return &TrackerSession{
		cfg:       cfg,
		id:        uuid.New(),
		fps:       fps,
		extractor: NewExtractor(cfg),
		validator: NewValidator(cfg),
		tracker:   NewIdentityTracker(cfg),
	}, nil
}

// ID returns the session identifier stamped onto reports.
func (s *TrackerSession) ID() uuid.UUID {
	return s.id
}

// Results returns the ordered frame results collected so far. Be careful:
// this is not a copy, but a reference to the session's sequence.
func (s *TrackerSession) Results() []FrameResult {
	return s.results
}

// ProcessFrame runs the full pipeline on one BGR frame: extraction, fusion,
// geometric validation, identity assignment, smoothing. The returned result
// is appended to the session sequence. A frame with no valid triplet (the
// dominant, designed-for outcome on bad frames) records success=false; a
// malformed frame does the same without aborting the session. The returned
// error is reserved for internal filter faults.
func (s *TrackerSession) ProcessFrame(frame gocv.Mat) (FrameResult, error) {
	candidates, err := s.extractor.Extract(frame)
	if err != nil {
		// Fatal to this frame only.
		return s.rejectFrame(), nil
	}
	fused := FuseCandidates(candidates, s.cfg.MergeRadius)
	return s.processPoints(fused)
}

// ProcessPoints runs validation, identity assignment and smoothing over
// already-fused scene points. It is the pipeline below extraction, exposed
// for callers that bring their own detector.
func (s *TrackerSession) ProcessPoints(fused []FusedPoint) (FrameResult, error) {
	return s.processPoints(fused)
}

func (s *TrackerSession) processPoints(fused []FusedPoint) (FrameResult, error) {
	triplet, ok := s.validator.FindBestTriplet(fused)
	if !ok {
		return s.rejectFrame(), nil
	}

	leds, ok, err := s.tracker.Step(&triplet, s.frameIdx)
	if err != nil {
		return FrameResult{}, errors.Wrapf(err, "can't track frame %d", s.frameIdx)
	}
	if !ok {
		return s.rejectFrame(), nil
	}

	result := FrameResult{
		FrameIndex:        s.frameIdx,
		TimestampSec:      s.timestamp(),
		Success:           true,
		LEDs:              make([]LEDObservation, 0, len(leds)),
		CollinearityError: triplet.CollinearityError,
		SpacingRatio:      triplet.SpacingRatio,
	}
	for _, led := range leds {
		result.LEDs = append(result.LEDs, LEDObservation{
			Identity:    led.Identity(),
			Position:    led.SmoothedPosition(),
			RawPosition: led.RawPosition(),
			Velocity:    led.Velocity(),
			Confidence:  led.Confidence(),
		})
	}
	s.record(result)
	return result, nil
}

// rejectFrame records a frame with no detection. Every identity filter runs
// prediction-only so the state keeps extrapolating through the gap.
func (s *TrackerSession) rejectFrame() FrameResult {
	s.tracker.Step(nil, s.frameIdx)
	result := FrameResult{
		FrameIndex:   s.frameIdx,
		TimestampSec: s.timestamp(),
		Success:      false,
	}
	s.record(result)
	return result
}

func (s *TrackerSession) record(result FrameResult) {
	s.results = append(s.results, result)
	s.frameIdx++
}

func (s *TrackerSession) timestamp() float64 {
	if s.fps <= 0 {
		return 0
	}
	return float64(s.frameIdx) / s.fps
}

// Finalize computes session statistics over the collected sequence. Call it
// after the last frame; further frames may still be processed, and a later
// Finalize will simply cover them too.
func (s *TrackerSession) Finalize() SessionStatistics {
	return ComputeStatistics(s.id, s.results, s.cfg)
}
