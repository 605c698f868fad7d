package ledtrack

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Extractor-level constants. These are properties of the imaging setup
// (infrared LEDs saturate the sensor) rather than per-video tunables.
const (
	// Binarization cutoff for the fixed-threshold method.
	fixedThresholdValue = 200.0
	// Local window and offset for the adaptive-threshold method.
	adaptiveBlockSize = 31
	adaptiveConstant  = 2.0
	// Circle transform band and sensitivity.
	houghDP      = 1.0
	houghMinDist = 40.0
	houghParam1  = 150.0
	houghParam2  = 25.0
	houghMinR    = 5
	houghMaxR    = 25
	// Candidates darker than this (relative to the nominal LED brightness)
	// are discarded by the intensity-based methods.
	minIntensityConfidence = 0.3
)

// frameData bundles the preprocessed planes every heuristic reads from.
// All Mats are owned by the Extractor and closed after fusion input is built.
type frameData struct {
	gray     gocv.Mat
	filtered gocv.Mat
	hsv      gocv.Mat
}

func (f *frameData) close() {
	f.gray.Close()
	f.filtered.Close()
	f.hsv.Close()
}

// detector is one extraction heuristic. Implementations are read-only over
// the frame data and independent of each other.
type detector interface {
	Method() DetectionMethod
	Detect(f *frameData, cfg Config) []Candidate
}

// Extractor turns one raster frame into bright-blob candidates by running a
// fixed, ordered set of independent heuristics. A heuristic finding nothing
// is not an error; the others compensate.
type Extractor struct {
	cfg       Config
	detectors []detector
}

// NewExtractor creates an extractor with all four heuristics.
func NewExtractor(cfg Config) *Extractor {
	return &Extractor{
		cfg: cfg,
		detectors: []detector{
			fixedThresholdDetector{},
			adaptiveThresholdDetector{},
			houghCirclesDetector{},
			brightSaturationDetector{},
		},
	}
}

// Extract runs every heuristic over the frame and returns the concatenated
// candidate list. The frame must be a 3-channel BGR raster; anything else is
// a malformed frame and fails extraction for this frame only.
func (e *Extractor) Extract(frame gocv.Mat) ([]Candidate, error) {
	if frame.Empty() {
		return nil, errors.New("malformed frame: empty matrix")
	}
	if frame.Channels() != 3 {
		return nil, errors.Errorf("malformed frame: expected 3 channels, got %d", frame.Channels())
	}

	f, err := preprocess(frame)
	if err != nil {
		return nil, errors.Wrap(err, "can't preprocess frame")
	}
	defer f.close()

	perMethod := make([][]Candidate, len(e.detectors))
	if e.cfg.ParallelExtraction {
		// The heuristics only read the shared planes. The WaitGroup joins
		// fully before fusion consumes any result.
		var wg sync.WaitGroup
		for i, d := range e.detectors {
			wg.Add(1)
			go func(slot int, d detector) {
				defer wg.Done()
				perMethod[slot] = d.Detect(f, e.cfg)
			}(i, d)
		}
		wg.Wait()
	} else {
		for i, d := range e.detectors {
			perMethod[i] = d.Detect(f, e.cfg)
		}
	}

	var candidates []Candidate
	for _, list := range perMethod {
		candidates = append(candidates, list...)
	}
	return candidates, nil
}

// preprocess converts to grayscale and builds the filtered and HSV planes.
// Gaussian blur first for gradual smoothing, then median to kill isolated
// noisy pixels while keeping blob edges intact.
func preprocess(frame gocv.Mat) (*frameData, error) {
	gray := gocv.NewMat()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)
	if gray.Empty() {
		gray.Close()
		return nil, errors.New("grayscale conversion produced empty matrix")
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(5, 5), 1.5, 1.5, gocv.BorderDefault)
	filtered := gocv.NewMat()
	gocv.MedianBlur(blurred, &filtered, 5)
	blurred.Close()

	hsv := gocv.NewMat()
	gocv.CvtColor(frame, &hsv, gocv.ColorBGRToHSV)

	return &frameData{gray: gray, filtered: filtered, hsv: hsv}, nil
}

// componentCandidates extracts area-filtered connected components from a
// binary image. Centroid comes from the bounding box; confidence is the fill
// ratio of the box, so compact round blobs score close to 1.
func componentCandidates(bin gocv.Mat, cfg Config, method DetectionMethod) []Candidate {
	labels := gocv.NewMat()
	defer labels.Close()
	stats := gocv.NewMat()
	defer stats.Close()
	centroids := gocv.NewMat()
	defer centroids.Close()

	numLabels := gocv.ConnectedComponentsWithStats(bin, &labels, &stats, &centroids)

	var out []Candidate
	// Label 0 is the background.
	for i := 1; i < numLabels; i++ {
		area := float64(stats.GetIntAt(i, int(gocv.CC_STAT_AREA)))
		if area <= cfg.MinBlobArea || area >= cfg.MaxBlobArea {
			continue
		}
		bbox := NewRect(
			float64(stats.GetIntAt(i, int(gocv.CC_STAT_LEFT))),
			float64(stats.GetIntAt(i, int(gocv.CC_STAT_TOP))),
			float64(stats.GetIntAt(i, int(gocv.CC_STAT_WIDTH))),
			float64(stats.GetIntAt(i, int(gocv.CC_STAT_HEIGHT))),
		)
		confidence := 0.5
		if bbox.Area() > 0 {
			confidence = math.Min(1.0, area/bbox.Area())
		}
		out = append(out, Candidate{
			Position:   bbox.Center(),
			Confidence: confidence,
			Method:     method,
		})
	}
	return out
}

// fixedThresholdDetector binarizes at a fixed brightness cutoff. Infrared
// LEDs saturate well above it while the background stays below.
type fixedThresholdDetector struct{}

func (fixedThresholdDetector) Method() DetectionMethod { return MethodFixedThreshold }

func (fixedThresholdDetector) Detect(f *frameData, cfg Config) []Candidate {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(f.gray, &bin, fixedThresholdValue, 255, gocv.ThresholdBinary)

	// Close small gaps inside blobs before labeling.
	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(bin, &bin, gocv.MorphClose, kernel)

	return componentCandidates(bin, cfg, MethodFixedThreshold)
}

// adaptiveThresholdDetector binarizes against a local Gaussian-weighted
// neighborhood mean, which survives uneven illumination.
type adaptiveThresholdDetector struct{}

func (adaptiveThresholdDetector) Method() DetectionMethod { return MethodAdaptiveThreshold }

func (adaptiveThresholdDetector) Detect(f *frameData, cfg Config) []Candidate {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.AdaptiveThreshold(f.filtered, &bin, 255,
		gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary,
		adaptiveBlockSize, adaptiveConstant)
	return componentCandidates(bin, cfg, MethodAdaptiveThreshold)
}

// houghCirclesDetector runs the gradient circle transform over the filtered
// plane. Confidence is mean intra-circle intensity relative to the nominal
// LED brightness.
type houghCirclesDetector struct{}

func (houghCirclesDetector) Method() DetectionMethod { return MethodHoughCircles }

func (houghCirclesDetector) Detect(f *frameData, cfg Config) []Candidate {
	circles := gocv.NewMat()
	defer circles.Close()

	gocv.HoughCirclesWithParams(f.filtered, &circles, gocv.HoughGradient,
		houghDP, houghMinDist, houghParam1, houghParam2, houghMinR, houghMaxR)

	if circles.Empty() || circles.Cols() == 0 {
		return nil
	}

	var out []Candidate
	for i := 0; i < circles.Cols(); i++ {
		x := float64(circles.GetFloatAt(0, i*3))
		y := float64(circles.GetFloatAt(0, i*3+1))
		r := float64(circles.GetFloatAt(0, i*3+2))

		area := math.Pi * r * r
		if area <= cfg.MinBlobArea || area >= cfg.MaxBlobArea {
			continue
		}

		confidence := math.Min(1.0, meanCircleIntensity(f.gray, x, y, r)/fixedThresholdValue)
		if confidence <= minIntensityConfidence {
			continue
		}
		out = append(out, Candidate{
			Position:   NewPoint(x, y),
			Confidence: confidence,
			Method:     MethodHoughCircles,
		})
	}
	return out
}

// meanCircleIntensity averages the grayscale intensity inside a circle.
func meanCircleIntensity(gray gocv.Mat, x, y, r float64) float64 {
	mask := gocv.NewMatWithSize(gray.Rows(), gray.Cols(), gocv.MatTypeCV8U)
	defer mask.Close()
	gocv.Circle(&mask, image.Pt(int(x), int(y)), int(r), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	masked := gocv.NewMat()
	defer masked.Close()
	gray.CopyToWithMask(&masked, mask)

	// m00 of the non-binary moments is the intensity sum over the mask.
	intensitySum := gocv.Moments(masked, false)["m00"]
	pixels := gocv.Moments(mask, true)["m00"]
	if pixels <= 0 {
		return 0
	}
	return intensitySum / pixels
}

// brightSaturationDetector segments pixels that are bright and desaturated
// in HSV space. LED cores wash out to near-white regardless of the emitter
// color. Centers are refined with intensity-weighted moments, which is more
// precise than the bounding-box centroid the threshold methods use.
type brightSaturationDetector struct{}

func (brightSaturationDetector) Method() DetectionMethod { return MethodBrightSaturation }

func (brightSaturationDetector) Detect(f *frameData, cfg Config) []Candidate {
	mask := gocv.NewMat()
	defer mask.Close()
	lower := gocv.NewScalar(0, 0, 200, 0)
	upper := gocv.NewScalar(180, 100, 255, 0)
	gocv.InRangeWithScalar(f.hsv, lower, upper, &mask)

	kernel := gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(3, 3))
	defer kernel.Close()
	gocv.MorphologyEx(mask, &mask, gocv.MorphClose, kernel)

	contours := gocv.FindContours(mask, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var out []Candidate
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		area := gocv.ContourArea(contour)
		if area <= cfg.MinBlobArea || area >= cfg.MaxBlobArea {
			continue
		}

		region := gocv.NewMatWithSize(mask.Rows(), mask.Cols(), gocv.MatTypeCV8U)
		gocv.DrawContours(&region, contours, i, color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

		masked := gocv.NewMat()
		f.gray.CopyToWithMask(&masked, region)
		region.Close()

		// Intensity-weighted centroid for sub-pixel precision.
		m := gocv.Moments(masked, false)
		masked.Close()
		if m["m00"] <= 0 {
			continue
		}
		cx := m["m10"] / m["m00"]
		cy := m["m01"] / m["m00"]

		meanIntensity := m["m00"] / area
		confidence := math.Min(1.0, meanIntensity/fixedThresholdValue)
		if confidence <= minIntensityConfidence {
			continue
		}
		out = append(out, Candidate{
			Position:   NewPoint(cx, cy),
			Confidence: confidence,
			Method:     MethodBrightSaturation,
		})
	}
	return out
}
