// Package report writes the session outputs: full per-frame JSON, a summary
// statistics JSON, and a human-readable text report.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"

	"github.com/hmdtrack/ledtrack-go/ledtrack"
)

const (
	resultsFile = "results.json"
	summaryFile = "summary.json"
	reportFile  = "report.txt"
)

// Metadata describes the processed session for the JSON outputs.
type Metadata struct {
	SessionID   string    `json:"session_id"`
	Video       string    `json:"video"`
	GeneratedAt time.Time `json:"generated_at"`
	TotalFrames int       `json:"total_frames"`
}

type fullResults struct {
	Metadata     Metadata                  `json:"metadata"`
	Statistics   ledtrack.SessionStatistics `json:"statistics"`
	FrameResults []ledtrack.FrameResult     `json:"frame_results"`
}

// Writer persists all session outputs into one directory.
type Writer struct {
	dir string
}

// NewWriter creates the output directory if needed.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "can't create output directory %s", dir)
	}
	return &Writer{dir: dir}, nil
}

// WriteAll writes the per-frame JSON, the summary JSON and the text report.
func (w *Writer) WriteAll(meta Metadata, stats ledtrack.SessionStatistics, results []ledtrack.FrameResult) error {
	full := fullResults{
		Metadata:     meta,
		Statistics:   stats,
		FrameResults: results,
	}
	if err := w.writeJSON(resultsFile, full); err != nil {
		return err
	}
	if err := w.writeJSON(summaryFile, stats); err != nil {
		return err
	}
	return w.writeText(meta, stats)
}

func (w *Writer) writeJSON(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "can't marshal %s", name)
	}
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "can't write %s", path)
	}
	return nil
}

func (w *Writer) writeText(meta Metadata, stats ledtrack.SessionStatistics) error {
	path := filepath.Join(w.dir, reportFile)
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "can't create %s", path)
	}
	defer f.Close()

	sep := "================================================================================\n"

	fmt.Fprint(f, sep)
	fmt.Fprint(f, "LED OPTICAL CENTER DETECTION REPORT\n")
	fmt.Fprint(f, sep)
	fmt.Fprintf(f, "\nSession: %s\n", meta.SessionID)
	fmt.Fprintf(f, "Video: %s\n", meta.Video)
	fmt.Fprintf(f, "Generated: %s\n", meta.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(f, "Frames processed: %d\n", stats.TotalFrames)
	fmt.Fprintf(f, "Frames with valid pattern: %d (%.2f%%)\n\n",
		stats.SuccessfulFrames, stats.SuccessRate*100)

	if stats.SuccessfulFrames > 0 {
		fmt.Fprint(f, "GEOMETRY:\n")
		fmt.Fprintf(f, "  Mean collinearity error: %.2f px\n", stats.CollinearityMean)
		fmt.Fprintf(f, "  Max collinearity error: %.2f px\n", stats.CollinearityMax)
		fmt.Fprintf(f, "  Spacing ratio: %.3f +/- %.3f\n\n",
			stats.SpacingRatioMean, stats.SpacingRatioStd)
	}

	for _, led := range stats.LEDs {
		fmt.Fprintf(f, "LED %d:\n", led.Identity+1)
		fmt.Fprintf(f, "  Frames retained (after outlier rejection): %d\n", led.DetectedFrames)
		if led.DetectedFrames == 0 {
			fmt.Fprint(f, "  No valid detections\n\n")
			continue
		}
		if led.LowConfidence {
			fmt.Fprint(f, "  LOW CONFIDENCE: too few samples for outlier filtering\n")
		}
		fmt.Fprintf(f, "  Estimated position: (%.2f, %.2f)\n", led.MeanPosition.X, led.MeanPosition.Y)
		fmt.Fprintf(f, "  Estimation error (sigma): %.4f px (x: %.4f, y: %.4f)\n",
			led.StdDeviation, led.StdX, led.StdY)
		fmt.Fprintf(f, "  Spread: x [%.2f, %.2f] (range %.2f), y [%.2f, %.2f] (range %.2f)\n",
			led.MinX, led.MaxX, led.RangeX, led.MinY, led.MaxY, led.RangeY)
		fmt.Fprintf(f, "  Jitter: mean %.2f px, max %.2f px\n\n",
			led.Jitter.Mean, led.Jitter.Max)
	}

	fmt.Fprint(f, sep)
	fmt.Fprintf(f, "Success rate %.2f%%: %s\n", stats.SuccessRate*100, rateVerdict(stats.SuccessRate))
	return nil
}

// rateVerdict grades the session success rate the same way the report's
// consumers read it.
func rateVerdict(rate float64) string {
	switch {
	case rate >= 0.99:
		return "EXCELLENT - very robust"
	case rate >= 0.95:
		return "VERY GOOD - robust"
	case rate >= 0.90:
		return "GOOD - acceptable"
	default:
		return "NEEDS IMPROVEMENT"
	}
}
