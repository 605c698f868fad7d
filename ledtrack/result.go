package ledtrack

// LEDObservation is the reported state of one identity in one frame.
// Position is the smoothed estimate; RawPosition the validated observation
// that produced it.
type LEDObservation struct {
	Identity    int     `json:"led_id"`
	Position    Point   `json:"position"`
	RawPosition Point   `json:"raw_position"`
	Velocity    Point   `json:"velocity"`
	Confidence  float64 `json:"confidence"`
}

// FrameResult is the outcome of processing one frame. LEDs holds exactly
// zero or exactly three observations: partial detections are not valid
// outcomes, the frame is rejected wholesale.
type FrameResult struct {
	FrameIndex        int              `json:"frame_idx"`
	TimestampSec      float64          `json:"timestamp"`
	Success           bool             `json:"success"`
	LEDs              []LEDObservation `json:"leds"`
	CollinearityError float64          `json:"collinearity_error"`
	SpacingRatio      float64          `json:"spacing_ratio"`
}
