package video

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/hmdtrack/ledtrack-go/ledtrack"
)

// identityColors are the fixed BGR-ordered overlay colors per identity:
// red, green, blue for LEDs 0, 1, 2.
var identityColors = []color.RGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
}

var (
	lineColor   = color.RGBA{R: 255, G: 255, A: 255}
	okColor     = color.RGBA{G: 255, A: 255}
	failColor   = color.RGBA{R: 255, A: 255}
	statusWhite = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Annotate draws the frame result onto the frame in place: a connecting
// line through the pattern, a filled and an outlined circle per identity,
// identity labels, and a status line with the geometry metrics.
func Annotate(frame *gocv.Mat, result ledtrack.FrameResult) {
	if result.Success && len(result.LEDs) == 3 {
		pts := make([]image.Point, len(result.LEDs))
		for i, led := range result.LEDs {
			pts[i] = image.Pt(int(led.Position.X), int(led.Position.Y))
		}
		gocv.Line(frame, pts[0], pts[1], lineColor, 2)
		gocv.Line(frame, pts[1], pts[2], lineColor, 2)

		for i, led := range result.LEDs {
			c := identityColors[led.Identity%len(identityColors)]
			gocv.Circle(frame, pts[i], 8, c, -1)
			gocv.Circle(frame, pts[i], 12, c, 2)
			gocv.PutText(frame, fmt.Sprintf("L%d", led.Identity+1),
				image.Pt(pts[i].X+15, pts[i].Y+5),
				gocv.FontHersheySimplex, 0.6, c, 2)
		}

		status := fmt.Sprintf("OK - Col:%.1fpx Ratio:%.2f",
			result.CollinearityError, result.SpacingRatio)
		gocv.PutText(frame, status, image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.7, okColor, 2)
	} else {
		gocv.PutText(frame, "NO VALID PATTERN", image.Pt(10, 30),
			gocv.FontHersheySimplex, 0.7, failColor, 2)
	}

	gocv.PutText(frame, fmt.Sprintf("Frame: %d", result.FrameIndex),
		image.Pt(10, 60), gocv.FontHersheySimplex, 0.5, statusWhite, 1)
}
