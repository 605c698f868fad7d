package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gocv.io/x/gocv"

	"github.com/hmdtrack/ledtrack-go/ledtrack"
	"github.com/hmdtrack/ledtrack-go/report"
	"github.com/hmdtrack/ledtrack-go/video"
)

// trackOptions holds the flags of the track command.
type trackOptions struct {
	OutputDir  string
	ConfigPath string
	MaxFrames  int
	SaveFrames bool
	Render     bool
	NoProgress bool
}

var trackOpts trackOptions

var trackCmd = &cobra.Command{
	Use:   "track <video>",
	Short: "Detect and track the LED markers through a video file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTrack(args[0], trackOpts)
	},
}

func init() {
	trackCmd.Flags().StringVarP(&trackOpts.OutputDir, "out", "o", "ledtrack_out", "Output directory for reports and annotated frames")
	trackCmd.Flags().StringVarP(&trackOpts.ConfigPath, "config", "c", "", "Path to a YAML config file (defaults apply when omitted)")
	trackCmd.Flags().IntVarP(&trackOpts.MaxFrames, "max-frames", "n", 0, "Stop after this many frames (0 = whole video)")
	trackCmd.Flags().BoolVar(&trackOpts.SaveFrames, "save-frames", false, "Save every annotated frame as a JPEG")
	trackCmd.Flags().BoolVar(&trackOpts.Render, "render", false, "Write an annotated copy of the video")
	trackCmd.Flags().BoolVar(&trackOpts.NoProgress, "no-progress", false, "Disable the progress bar")

	rootCmd.AddCommand(trackCmd)
}

func runTrack(videoPath string, opts trackOptions) error {
	cfg := ledtrack.DefaultConfig()
	if opts.ConfigPath != "" {
		var err error
		cfg, err = ledtrack.LoadConfig(opts.ConfigPath)
		if err != nil {
			return err
		}
	}

	src, err := video.Open(videoPath)
	if err != nil {
		return err
	}
	defer src.Close()

	session, err := ledtrack.NewTrackerSession(cfg, src.FPS())
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Session %s\n", session.ID())
	fmt.Fprintf(os.Stderr, "Video: %s (%.2f fps, %d frames)\n", videoPath, src.FPS(), src.FrameCount())

	var sinks []video.FrameSink
	if opts.SaveFrames {
		dirSink, err := video.NewDirSink(filepath.Join(opts.OutputDir, "frames"))
		if err != nil {
			return err
		}
		sinks = append(sinks, dirSink)
	}

	total := src.FrameCount()
	if opts.MaxFrames > 0 && opts.MaxFrames < total {
		total = opts.MaxFrames
	}
	bar := newProgressBar(total, opts.NoProgress)

	frame := gocv.NewMat()
	defer frame.Close()

	var writerSink *video.WriterSink
	processed := 0
	for src.Next(&frame) {
		if opts.MaxFrames > 0 && processed >= opts.MaxFrames {
			break
		}

		result, err := session.ProcessFrame(frame)
		if err != nil {
			return err
		}

		if opts.SaveFrames || opts.Render {
			video.Annotate(&frame, result)
			if opts.Render && writerSink == nil {
				// The writer needs frame dimensions, available only now.
				writerSink, err = video.NewWriterSink(
					filepath.Join(opts.OutputDir, "annotated.mp4"),
					src.FPS(), frame.Cols(), frame.Rows())
				if err != nil {
					return err
				}
				sinks = append(sinks, writerSink)
			}
			for _, sink := range sinks {
				if err := sink.Write(result.FrameIndex, frame); err != nil {
					return err
				}
			}
		}

		processed++
		bar.Add(1)
	}
	bar.Finish()
	for _, sink := range sinks {
		if err := sink.Close(); err != nil {
			return err
		}
	}

	stats := session.Finalize()

	writer, err := report.NewWriter(opts.OutputDir)
	if err != nil {
		return err
	}
	meta := report.Metadata{
		SessionID:   session.ID().String(),
		Video:       videoPath,
		GeneratedAt: time.Now(),
		TotalFrames: processed,
	}
	if err := writer.WriteAll(meta, stats, session.Results()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\nProcessed %d frames, %d with a valid pattern (%.2f%%)\n",
		stats.TotalFrames, stats.SuccessfulFrames, stats.SuccessRate*100)
	for _, led := range stats.LEDs {
		if led.DetectedFrames == 0 {
			fmt.Fprintf(os.Stderr, "LED %d: no valid detections\n", led.Identity+1)
			continue
		}
		fmt.Fprintf(os.Stderr, "LED %d: (%.2f, %.2f) +/- %.3f px over %d frames\n",
			led.Identity+1, led.MeanPosition.X, led.MeanPosition.Y,
			led.StdDeviation, led.DetectedFrames)
	}
	fmt.Fprintf(os.Stderr, "Reports written to %s\n", opts.OutputDir)
	return nil
}

func newProgressBar(total int, disabled bool) *progressbar.ProgressBar {
	if disabled {
		return progressbar.DefaultSilent(int64(total))
	}
	if total <= 0 {
		total = -1
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Tracking"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
	)
}
