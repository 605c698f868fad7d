package video

import (
	"testing"

	"gocv.io/x/gocv"

	"github.com/hmdtrack/ledtrack-go/ledtrack"
)

func TestAnnotateDrawsPattern(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	result := ledtrack.FrameResult{
		FrameIndex:        7,
		Success:           true,
		CollinearityError: 1.2,
		SpacingRatio:      1.01,
		LEDs: []ledtrack.LEDObservation{
			{Identity: 0, Position: ledtrack.NewPoint(100, 240)},
			{Identity: 1, Position: ledtrack.NewPoint(300, 240)},
			{Identity: 2, Position: ledtrack.NewPoint(500, 240)},
		},
	}
	Annotate(&frame, result)

	// The filled marker circle must leave non-black pixels at each LED.
	for _, led := range result.LEDs {
		v := frame.GetVecbAt(int(led.Position.Y), int(led.Position.X))
		if v[0] == 0 && v[1] == 0 && v[2] == 0 {
			t.Errorf("no overlay drawn at %v", led.Position)
		}
	}
}

func TestAnnotateRejectedFrame(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	Annotate(&frame, ledtrack.FrameResult{FrameIndex: 3, Success: false})

	// Status text lands in the top-left corner.
	nonZero := false
	for y := 10; y < 40 && !nonZero; y++ {
		for x := 10; x < 250 && !nonZero; x++ {
			v := frame.GetVecbAt(y, x)
			if v[0] != 0 || v[1] != 0 || v[2] != 0 {
				nonZero = true
			}
		}
	}
	if !nonZero {
		t.Error("no status text drawn on rejected frame")
	}
}
