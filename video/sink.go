package video

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// FrameSink writes annotated frames somewhere. The pipeline treats it as a
// synchronous collaborator at the loop boundary.
type FrameSink interface {
	Write(frameIdx int, frame gocv.Mat) error
	Close() error
}

// DirSink dumps each frame as a numbered JPEG into a directory.
type DirSink struct {
	dir string
}

// NewDirSink creates the directory if needed.
func NewDirSink(dir string) (*DirSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "can't create frames directory %s", dir)
	}
	return &DirSink{dir: dir}, nil
}

func (s *DirSink) Write(frameIdx int, frame gocv.Mat) error {
	name := filepath.Join(s.dir, fmt.Sprintf("frame_%06d.jpg", frameIdx))
	if ok := gocv.IMWrite(name, frame); !ok {
		return errors.Errorf("can't write frame %s", name)
	}
	return nil
}

func (s *DirSink) Close() error {
	return nil
}

// WriterSink encodes annotated frames into an output video.
type WriterSink struct {
	writer *gocv.VideoWriter
}

// NewWriterSink opens an mp4 writer with the given geometry.
func NewWriterSink(path string, fps float64, width, height int) (*WriterSink, error) {
	if fps <= 0 {
		fps = 25.0
	}
	writer, err := gocv.VideoWriterFile(path, "mp4v", fps, width, height, true)
	if err != nil {
		return nil, errors.Wrapf(err, "can't open video writer %s", path)
	}
	return &WriterSink{writer: writer}, nil
}

func (s *WriterSink) Write(_ int, frame gocv.Mat) error {
	return s.writer.Write(frame)
}

func (s *WriterSink) Close() error {
	return s.writer.Close()
}
