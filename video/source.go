// Package video adapts gocv video I/O to the tracking pipeline: an ordered
// frame source, an annotator for per-identity overlays, and sinks for
// annotated output.
package video

import (
	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Source produces an ordered, finite sequence of BGR frames from a video
// file. The pipeline consumes frames strictly in order, one at a time.
type Source struct {
	path string
	cap  *gocv.VideoCapture
	fps  float64
	// Total frames as reported by the container; may be 0 for streams.
	frameCount int
}

// Open opens a video file for sequential reading.
func Open(path string) (*Source, error) {
	cap, err := gocv.VideoCaptureFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video %s", path)
	}
	if !cap.IsOpened() {
		cap.Close()
		return nil, errors.Errorf("can't open video %s", path)
	}
	return &Source{
		path:       path,
		cap:        cap,
		fps:        cap.Get(gocv.VideoCaptureFPS),
		frameCount: int(cap.Get(gocv.VideoCaptureFrameCount)),
	}, nil
}

// Path returns the source file path.
func (s *Source) Path() string {
	return s.path
}

// FPS returns the container frame rate (0 when unknown).
func (s *Source) FPS() float64 {
	return s.fps
}

// FrameCount returns the total frame count reported by the container.
func (s *Source) FrameCount() int {
	return s.frameCount
}

// Next reads the next frame into the given Mat. It returns false at end of
// stream. The caller owns the Mat and may reuse it between calls.
func (s *Source) Next(frame *gocv.Mat) bool {
	if ok := s.cap.Read(frame); !ok {
		return false
	}
	return !frame.Empty()
}

// Close releases the underlying capture.
func (s *Source) Close() error {
	return s.cap.Close()
}
